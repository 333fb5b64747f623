// Package registry holds the per-category configuration that drives the
// generic review workflow: which document types a subfolder must contain,
// what entity owns it and who is notified when it is submitted.
package registry

import (
	"fmt"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type Descriptor struct {
	Category domain.Category
	Label    string
	Entity   domain.EntityKind
	// Required must each have an APPROVED document for the subfolder to be complete.
	Required []domain.DocumentType
	// DriverRequired is added to Required for personnel flagged as drivers.
	DriverRequired []domain.DocumentType
	Optional       []domain.DocumentType
	Recipients     []string
}

// EntityScoped reports whether subfolders of this category belong to a worker or vehicle.
func (d Descriptor) EntityScoped() bool {
	return d.Entity != domain.EntityNone
}

// RequiredFor returns the required types for a concrete subfolder.
func (d Descriptor) RequiredFor(sf domain.Subfolder) []domain.DocumentType {
	out := make([]domain.DocumentType, 0, len(d.Required)+len(d.DriverRequired))
	out = append(out, d.Required...)
	if sf.IsDriver {
		out = append(out, d.DriverRequired...)
	}
	return out
}

func (d Descriptor) Allows(docType domain.DocumentType) bool {
	for _, group := range [][]domain.DocumentType{d.Required, d.DriverRequired, d.Optional} {
		for _, t := range group {
			if t == docType {
				return true
			}
		}
	}
	return false
}

type Registry struct {
	descriptors map[domain.Category]Descriptor
}

func New(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{descriptors: make(map[domain.Category]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if !d.Category.Valid() {
			return nil, fmt.Errorf("registry: unknown category %q", d.Category)
		}
		if _, dup := r.descriptors[d.Category]; dup {
			return nil, fmt.Errorf("registry: duplicate descriptor for %s", d.Category)
		}
		if len(d.Required) == 0 {
			return nil, fmt.Errorf("registry: %s has no required document types", d.Category)
		}
		r.descriptors[d.Category] = d
	}
	return r, nil
}

// Lookup resolves a category to its descriptor.
func (r *Registry) Lookup(c domain.Category) (Descriptor, error) {
	d, ok := r.descriptors[c]
	if !ok {
		return Descriptor{}, domain.Validation("lookup category", "unknown category %q", c)
	}
	return d, nil
}

// FolderScoped lists the categories provisioned automatically with a FULL startup folder.
func (r *Registry) FolderScoped() []domain.Category {
	out := make([]domain.Category, 0)
	for _, c := range domain.Categories() {
		d, ok := r.descriptors[c]
		if ok && !d.EntityScoped() {
			out = append(out, c)
		}
	}
	return out
}
