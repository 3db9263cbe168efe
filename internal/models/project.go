package models

import (
	"errors"
	"fmt"
	"strings"
)

// ProjectTech is a named, colored badge for one technology used by a project
type ProjectTech struct {
	Name  string `json:"name" yaml:"name" binding:"required"`
	Color string `json:"color" yaml:"color" binding:"required"`
}

// Project is a portfolio project shown in the showcase.
// LiveURL is nil when the project has no live deployment; TechStack is
// kept in display order.
type Project struct {
	ID              string        `json:"id" yaml:"id"`
	Title           string        `json:"title" yaml:"title"`
	Description     string        `json:"description" yaml:"description"`
	LongDescription string        `json:"longDescription" yaml:"longDescription"`
	Image           string        `json:"image" yaml:"image"`
	GithubURL       string        `json:"githubUrl" yaml:"githubUrl"`
	LiveURL         *string       `json:"liveUrl,omitempty" yaml:"liveUrl,omitempty"`
	TechStack       []ProjectTech `json:"techStack" yaml:"techStack"`
}

var (
	ErrDuplicateProjectID = errors.New("duplicate project id")
	ErrInvalidProject     = errors.New("invalid project")
)

// HasLiveURL reports whether the project links to a live deployment
func (p *Project) HasLiveURL() bool {
	return p.LiveURL != nil
}

// Validate checks the fields every project must carry
func (p *Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProject)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: project %s: title is required", ErrInvalidProject, p.ID)
	}
	return nil
}

// DuplicateTechNames returns badge names that appear more than once in
// TechStack. Duplicates are allowed but usually a data-entry mistake.
func (p *Project) DuplicateTechNames() []string {
	seen := make(map[string]int, len(p.TechStack))
	var dups []string
	for _, t := range p.TechStack {
		seen[t.Name]++
		if seen[t.Name] == 2 {
			dups = append(dups, t.Name)
		}
	}
	return dups
}

// Clone returns a deep copy so callers never share a TechStack slice
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	if p.LiveURL != nil {
		live := *p.LiveURL
		c.LiveURL = &live
	}
	c.TechStack = make([]ProjectTech, len(p.TechStack))
	copy(c.TechStack, p.TechStack)
	return &c
}

// Normalize replaces a nil TechStack with an empty one so it encodes as []
func (p *Project) Normalize() {
	if p.TechStack == nil {
		p.TechStack = []ProjectTech{}
	}
}

// ValidateProjects validates every project and the uniqueness of ids
func ValidateProjects(projects []*Project) error {
	seen := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		if p == nil {
			return fmt.Errorf("%w: nil project", ErrInvalidProject)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateProjectID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// SaveProjectRequest is the admin payload for creating or replacing a project.
// The id comes from the URL.
type SaveProjectRequest struct {
	Title           string        `json:"title" binding:"required"`
	Description     string        `json:"description" binding:"required"`
	LongDescription string        `json:"longDescription"`
	Image           string        `json:"image"`
	GithubURL       string        `json:"githubUrl" binding:"required,url"`
	LiveURL         *string       `json:"liveUrl" binding:"omitempty,url"`
	TechStack       []ProjectTech `json:"techStack" binding:"dive"`
	Position        *int          `json:"position"`
}

// ToProject builds the project stored under id
func (r *SaveProjectRequest) ToProject(id string) *Project {
	p := &Project{
		ID:              id,
		Title:           r.Title,
		Description:     r.Description,
		LongDescription: r.LongDescription,
		Image:           r.Image,
		GithubURL:       r.GithubURL,
		LiveURL:         r.LiveURL,
		TechStack:       r.TechStack,
	}
	p.Normalize()
	return p
}

// UploadProjectImageRequest carries a base64 image (optionally a data URI)
type UploadProjectImageRequest struct {
	Image       string `json:"image" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// UploadProjectImageResponse returns the public URL of an uploaded image
type UploadProjectImageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ProjectsResponse is the body of GET /api/v1/projects
type ProjectsResponse struct {
	Projects []*Project `json:"projects"`
	Total    int        `json:"total"`
}
