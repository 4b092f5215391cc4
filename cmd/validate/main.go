package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/storyforge/narrative-engine/pkg/campaign"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <campaign.json> [campaign.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	validator := &CampaignValidator{}
	failed := false
	for _, filename := range os.Args[1:] {
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type CampaignValidator struct {
	errors []string
}

func (v *CampaignValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("campaign file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidCampaignFilename(nameWithoutExt) {
		return fmt.Errorf("campaign filename '%s' must be lowercase snake_case (e.g., my_campaign.json, not my-campaign.json or MyCampaign.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var c campaign.Campaign
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&c); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.validateCampaign(&c)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *CampaignValidator) validateCampaign(c *campaign.Campaign) {
	for _, n := range c.NPCs {
		v.validateIDFormat("NPC ID", n.ID)
	}
	for _, f := range c.Factions {
		v.validateIDFormat("faction ID", f.ID)
	}
	for _, comp := range c.Companions {
		v.validateIDFormat("companion ID", comp.ID)
	}
	for _, q := range c.Quests {
		for _, theme := range q.Context.Themes {
			v.validateIDFormat("quest theme", theme)
		}
		for _, npc := range q.Context.NPCs {
			v.validateIDFormat("quest NPC reference", npc)
		}
		for _, faction := range q.Context.Factions {
			v.validateIDFormat("quest faction reference", faction)
		}
	}
}

func (v *CampaignValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *CampaignValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidCampaignFilename(name string) bool {
	// Allow 'x.' prefix for experimental campaigns
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
