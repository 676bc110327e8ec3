package repository

import (
	"fmt"
	"os"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Seed is the fixture format for the in-memory driver.
type Seed struct {
	Applications []struct {
		ID          uuid.UUID               `yaml:"id"`
		Status      model.ApplicationStatus `yaml:"status"`
		RecruiterID *uuid.UUID              `yaml:"recruiter_id"`
	} `yaml:"applications"`
	Users []struct {
		ID    uuid.UUID `yaml:"id"`
		Name  string    `yaml:"name"`
		Email string    `yaml:"email"`
	} `yaml:"users"`
}

// LoadSeed reads a YAML fixture file into the memory collaborators.
func LoadSeed(path string, apps *MemoryApplications, dir *MemoryDirectory) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	return ApplySeed(raw, apps, dir)
}

func ApplySeed(raw []byte, apps *MemoryApplications, dir *MemoryDirectory) (int, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}
	for _, a := range s.Applications {
		if a.ID == uuid.Nil {
			return 0, fmt.Errorf("seed application without id")
		}
		apps.Put(a.ID, a.Status, a.RecruiterID)
	}
	for _, u := range s.Users {
		dir.Put(model.UserProfile{UserID: u.ID, Name: u.Name, Email: u.Email})
	}
	return len(s.Applications) + len(s.Users), nil
}
