package pets

import (
	"strings"
	"time"

	"pethouse/internal/domain"
)

// Gender of the pet.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender maps anything outside the known set to GenderUnknown.
func ParseGender(s string) Gender {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g
	default:
		return GenderUnknown
	}
}

const dateLayout = "2006-01-02"

// Pet is a profile owned by exactly one user. OwnerUserID is fixed at creation.
type Pet struct {
	ID          int64
	OwnerUserID int64

	Name      string
	Species   *string
	Breed     *string
	BirthDate *time.Time
	Gender    Gender
	Photo     *string // stored file name, served under /uploads/
	Notes     *string

	CreatedAt time.Time
}

func (p Pet) OwnerID() int64 {
	return p.OwnerUserID
}

// Input is the raw form submission for create and edit.
type Input struct {
	Name      string
	Species   string
	Breed     string
	BirthDate string // YYYY-MM-DD, optional
	Gender    string
	Notes     string
}

type fields struct {
	name      string
	species   *string
	breed     *string
	birthDate *time.Time
	gender    Gender
	notes     *string
}

// normalize trims every value, turns blanks into nil and records problems instead of stopping at the
// first one.
func (in Input) normalize(p *domain.Problems) fields {
	f := fields{
		name:    strings.TrimSpace(in.Name),
		species: optional(in.Species),
		breed:   optional(in.Breed),
		gender:  ParseGender(in.Gender),
		notes:   optional(in.Notes),
	}
	p.Addf(f.name == "", "Pet name is required.")

	if bd := strings.TrimSpace(in.BirthDate); bd != "" {
		t, err := time.Parse(dateLayout, bd)
		if err != nil {
			p.Add("Birth date is not valid. Use the YYYY-MM-DD format.")
		} else {
			f.birthDate = &t
		}
	}
	return f
}

func (f fields) apply(p *Pet) {
	p.Name = f.name
	p.Species = f.species
	p.Breed = f.breed
	p.BirthDate = f.birthDate
	p.Gender = f.gender
	p.Notes = f.notes
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// OldValues echoes a submission back for re-entry.
func (in Input) OldValues() map[string]string {
	return map[string]string{
		"name":       in.Name,
		"species":    in.Species,
		"breed":      in.Breed,
		"birth_date": in.BirthDate,
		"gender":     in.Gender,
		"notes":      in.Notes,
	}
}
