package types

import "strings"

// CompanyFormData is the payload for saving the caller's company profile.
// Slug is derived from Name when empty.
type CompanyFormData struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty" validate:"omitempty,httpurl"`
	Description string `json:"description,omitempty"`
}

// Normalize trims every field and lower-cases an explicit slug.
func (f *CompanyFormData) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Slug = strings.ToLower(strings.TrimSpace(f.Slug))
	f.LogoURL = strings.TrimSpace(f.LogoURL)
	f.Industry = strings.TrimSpace(f.Industry)
	f.Size = strings.TrimSpace(f.Size)
	f.Location = strings.TrimSpace(f.Location)
	f.Website = strings.TrimSpace(f.Website)
	f.Description = strings.TrimSpace(f.Description)
}

// CompanyInfo is a company profile as returned to clients.
type CompanyInfo struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	LogoURL     *string `json:"logoUrl,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Size        *string `json:"size,omitempty"`
	Location    *string `json:"location,omitempty"`
	Website     *string `json:"website,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CompanyCard is one entry of the public company directory.
type CompanyCard struct {
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	LogoURL   *string `json:"logoUrl,omitempty"`
	Industry  *string `json:"industry,omitempty"`
	Size      *string `json:"size,omitempty"`
	Location  *string `json:"location,omitempty"`
	OpenRoles int     `json:"openRoles"`
}

// CompanyPage is one page of the company directory.
type CompanyPage struct {
	Companies []CompanyCard `json:"companies"`
	Total     int           `json:"total"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
}

// PublicCompany is a company profile together with its open roles.
type PublicCompany struct {
	CompanyInfo
	OpenRoles []JobResponse `json:"openRoles"`
}
