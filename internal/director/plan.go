package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Section is one stop of the capture sequence.
type Section struct {
	Name     string
	Selector string
	Pause    time.Duration
}

// DefaultSections is the fixed landing-page walk: About, Skills,
// Projects, Contact, in that order.
func DefaultSections() []Section {
	return []Section{
		{Name: "About", Selector: "#about", Pause: 3000 * time.Millisecond},
		{Name: "Skills", Selector: "#skills", Pause: 3500 * time.Millisecond},
		{Name: "Projects", Selector: "#projects", Pause: 3500 * time.Millisecond},
		{Name: "Contact", Selector: "#contact", Pause: 2500 * time.Millisecond},
	}
}

// Plan is the on-disk form of a section sequence.
type Plan struct {
	Version  string        `yaml:"version"`
	Sections []PlanSection `yaml:"sections"`
}

// PlanSection mirrors Section with the pause in seconds.
type PlanSection struct {
	Name     string  `yaml:"name"`
	Selector string  `yaml:"selector"`
	Pause    float64 `yaml:"pause"`
}

// DefaultPlan returns the built-in sequence in its serializable form.
func DefaultPlan() *Plan {
	sections := DefaultSections()
	plan := &Plan{
		Version:  "1.0",
		Sections: make([]PlanSection, len(sections)),
	}
	for i, s := range sections {
		plan.Sections[i] = PlanSection{
			Name:     s.Name,
			Selector: s.Selector,
			Pause:    s.Pause.Seconds(),
		}
	}
	return plan
}

// Runnable converts the plan back into the run-time sequence.
func (p *Plan) Runnable() []Section {
	sections := make([]Section, len(p.Sections))
	for i, s := range p.Sections {
		sections[i] = Section{
			Name:     s.Name,
			Selector: s.Selector,
			Pause:    time.Duration(s.Pause * float64(time.Second)),
		}
	}
	return sections
}

// WritePlan writes a plan to a YAML file
func WritePlan(plan *Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML file
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

// ResolvePlan loads the plan at path; a directory selects its most
// recent plan file.
func ResolvePlan(path string) (*Plan, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		latest, err := FindLatestPlan(path)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	return ReadPlan(path)
}

// FindLatestPlan finds the most recent plan file in dir.
func FindLatestPlan(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read plans directory: %w", err)
	}

	var plans []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			plans = append(plans, filepath.Join(dir, entry.Name()))
		}
	}

	if len(plans) == 0 {
		return "", fmt.Errorf("no plan files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(plans, func(i, j int) bool {
		infoI, _ := os.Stat(plans[i])
		infoJ, _ := os.Stat(plans[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return plans[0], nil
}
