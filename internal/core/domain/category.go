package domain

type Category string

const (
	CategoryPersonnel       Category = "PERSONNEL"
	CategoryVehicles        Category = "VEHICLES"
	CategorySafetyAndHealth Category = "SAFETY_AND_HEALTH"
	CategoryEnvironmental   Category = "ENVIRONMENTAL"
	// CategoryEnvironment is kept apart from CategoryEnvironmental; the two carry
	// different document sets and are not merged.
	CategoryEnvironment    Category = "ENVIRONMENT"
	CategoryTechnicalSpecs Category = "TECHNICAL_SPECS"
	CategoryBasic          Category = "BASIC"
)

// Categories lists every registered category in display order.
func Categories() []Category {
	return []Category{
		CategoryPersonnel,
		CategoryVehicles,
		CategorySafetyAndHealth,
		CategoryEnvironmental,
		CategoryEnvironment,
		CategoryTechnicalSpecs,
		CategoryBasic,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

type DocumentType string

// EntityKind names what owns a category's subfolder inside a startup folder.
type EntityKind string

const (
	EntityNone    EntityKind = ""
	EntityWorker  EntityKind = "worker"
	EntityVehicle EntityKind = "vehicle"
)
