package visits

import (
	"strings"
	"time"

	"pethouse/internal/domain"
	"pethouse/internal/domain/pets"
)

const dateLayout = "2006-01-02"

// Visit has no owner of its own; access follows the parent pet.
type Visit struct {
	ID          int64
	PetID       int64
	VisitDate   time.Time
	Type        *string
	Description *string
	CreatedAt   time.Time
}

// Record is a visit joined to its parent pet. A visit whose pet cannot be resolved never becomes a Record.
type Record struct {
	Visit
	Pet pets.Pet
}

func (r Record) OwnerID() int64 {
	return r.Pet.OwnerUserID
}

// RecentVisit is a dashboard row.
type RecentVisit struct {
	Visit
	PetName string
}

// RecentFilter bounds visit_date inclusively. Nil bounds are open.
type RecentFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

func (f RecentFilter) Match(d time.Time) bool {
	if f.From != nil && d.Before(*f.From) {
		return false
	}
	if f.To != nil && d.After(*f.To) {
		return false
	}
	return true
}

type Input struct {
	VisitDate   string // YYYY-MM-DD, required
	Type        string
	Description string
}

type fields struct {
	visitDate   time.Time
	kind        *string
	description *string
}

func (in Input) normalize(p *domain.Problems) fields {
	f := fields{
		kind:        optional(in.Type),
		description: optional(in.Description),
	}

	d := strings.TrimSpace(in.VisitDate)
	if d == "" {
		p.Add("Visit date is required.")
		return f
	}
	t, err := time.Parse(dateLayout, d)
	if err != nil {
		p.Add("Visit date is not valid. Use the YYYY-MM-DD format.")
		return f
	}
	f.visitDate = t
	return f
}

func (f fields) apply(v *Visit) {
	v.VisitDate = f.visitDate
	v.Type = f.kind
	v.Description = f.description
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (in Input) OldValues() map[string]string {
	return map[string]string{
		"visit_date":  in.VisitDate,
		"type":        in.Type,
		"description": in.Description,
	}
}
