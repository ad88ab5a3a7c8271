package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds the keyword lists driving classification. All matching is
// lowercase substring containment.
type Policy struct {
	Block        []string `yaml:"block"`
	Allow        []string `yaml:"allow"`
	SoftNegative []string `yaml:"soft_negative"`
}

// LoadPolicy reads a keyword policy from a YAML file, lowercasing every
// entry so the classifier can match without re-normalizing.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read keyword policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse keyword policy: %w", err)
	}

	p.Block = lowercase(p.Block)
	p.Allow = lowercase(p.Allow)
	p.SoftNegative = lowercase(p.SoftNegative)
	return p, nil
}

func lowercase(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// DefaultPolicy is the built-in keyword model used when no policy file is
// configured.
func DefaultPolicy() Policy {
	return Policy{
		Block: []string{
			// Crime and violence
			"murder", "kill", "shot", "shooting", "assault", "attack",
			"robbery", "stabbing", "dead", "death", "homicide", "crime",
			"arrest", "charged",
			// Politics and controversy
			"trump", "biden", "election", "vote", "congress", "senate",
			"political", "protest", "riot", "impeach",
			// Disasters and accidents
			"crash", "accident", "fire", "explosion", "disaster",
			"emergency", "fatal", "died", "injured", "victim",
			// War and conflict
			"war", "terror", "bomb", "military", "invasion", "conflict", "strike",
			// Negative general
			"scandal", "lawsuit", "sue", "fraud", "abuse", "crisis", "threat",
		},
		Allow: []string{
			// Community and achievement
			"community", "volunteer", "hero", "helping", "kindness",
			"charity", "donation", "fundraiser", "support", "award",
			"honor", "celebrate", "achievement", "success",
			// Environment and nature
			"clean", "green", "solar", "park", "garden", "nature",
			"conservation", "wildlife", "rescued", "saved",
			// Innovation and progress
			"innovation", "breakthrough", "develop", "improve",
			"new program", "initiative", "project", "opens", "launch",
			// Arts and culture
			"art", "museum", "festival", "music", "culture", "theater", "exhibit",
			// Education and youth
			"student", "school", "education", "graduate", "scholarship", "learning",
			// Health and wellness
			"health", "wellness", "recovery", "miracle", "survivor",
		},
		SoftNegative: []string{
			"concern", "worry", "problem", "issue", "fail",
		},
	}
}
