package registry

import "github.com/kirillkom/contractor-compliance/internal/core/domain"

const (
	TypeIDCard             domain.DocumentType = "ID_CARD"
	TypeEmploymentContract domain.DocumentType = "EMPLOYMENT_CONTRACT"
	TypeMedicalExam        domain.DocumentType = "OCCUPATIONAL_MEDICAL_EXAM"
	TypeSafetyInduction    domain.DocumentType = "SAFETY_INDUCTION_RECORD"
	TypePPEDelivery        domain.DocumentType = "PPE_DELIVERY_RECORD"
	TypeDriverLicense      domain.DocumentType = "DRIVER_LICENSE"
	TypeDefensiveDriving   domain.DocumentType = "DEFENSIVE_DRIVING_CERTIFICATE"
	TypeCertification      domain.DocumentType = "TRADE_CERTIFICATION"

	TypeVehicleRegistration domain.DocumentType = "VEHICLE_REGISTRATION"
	TypeCirculationPermit   domain.DocumentType = "CIRCULATION_PERMIT"
	TypeTechnicalInspection domain.DocumentType = "TECHNICAL_INSPECTION"
	TypeMandatoryInsurance  domain.DocumentType = "MANDATORY_INSURANCE"
	TypeMaintenanceLog      domain.DocumentType = "MAINTENANCE_LOG"

	TypeInternalRegulations domain.DocumentType = "INTERNAL_SAFETY_REGULATIONS"
	TypeRiskMatrix          domain.DocumentType = "RISK_MATRIX"
	TypeWorkProcedure       domain.DocumentType = "WORK_PROCEDURE"
	TypeEmergencyPlan       domain.DocumentType = "EMERGENCY_PLAN"
	TypeAccidentRate        domain.DocumentType = "ACCIDENT_RATE_CERTIFICATE"

	TypeWasteManagementPlan domain.DocumentType = "WASTE_MANAGEMENT_PLAN"
	TypeEnvImpactStatement  domain.DocumentType = "ENVIRONMENTAL_IMPACT_STATEMENT"
	TypeSpillResponsePlan   domain.DocumentType = "SPILL_RESPONSE_PLAN"

	TypeEnvironmentalPermit domain.DocumentType = "ENVIRONMENTAL_PERMIT"
	TypeHazardousWasteLog   domain.DocumentType = "HAZARDOUS_WASTE_REGISTRY"

	TypeEquipmentDatasheet     domain.DocumentType = "EQUIPMENT_DATASHEET"
	TypeCalibrationCertificate domain.DocumentType = "CALIBRATION_CERTIFICATE"
	TypeLoadTestReport         domain.DocumentType = "LOAD_TEST_REPORT"

	TypeSocialSecurity domain.DocumentType = "SOCIAL_SECURITY_CERTIFICATE"
)

// Defaults returns the built-in descriptors for all registered categories.
func Defaults() []Descriptor {
	return []Descriptor{
		{
			Category:       domain.CategoryPersonnel,
			Label:          "Personnel",
			Entity:         domain.EntityWorker,
			Required:       []domain.DocumentType{TypeIDCard, TypeEmploymentContract, TypeMedicalExam, TypeSafetyInduction, TypePPEDelivery},
			DriverRequired: []domain.DocumentType{TypeDriverLicense, TypeDefensiveDriving},
			Optional:       []domain.DocumentType{TypeCertification},
		},
		{
			Category: domain.CategoryVehicles,
			Label:    "Vehicles",
			Entity:   domain.EntityVehicle,
			Required: []domain.DocumentType{TypeVehicleRegistration, TypeCirculationPermit, TypeTechnicalInspection, TypeMandatoryInsurance},
			Optional: []domain.DocumentType{TypeMaintenanceLog},
		},
		{
			Category: domain.CategorySafetyAndHealth,
			Label:    "Safety and Health",
			Required: []domain.DocumentType{TypeInternalRegulations, TypeRiskMatrix, TypeWorkProcedure, TypeEmergencyPlan},
			Optional: []domain.DocumentType{TypeAccidentRate},
		},
		{
			Category: domain.CategoryEnvironmental,
			Label:    "Environmental",
			Required: []domain.DocumentType{TypeWasteManagementPlan, TypeEnvImpactStatement},
			Optional: []domain.DocumentType{TypeSpillResponsePlan},
		},
		{
			Category: domain.CategoryEnvironment,
			Label:    "Environment",
			Required: []domain.DocumentType{TypeEnvironmentalPermit, TypeHazardousWasteLog},
		},
		{
			Category: domain.CategoryTechnicalSpecs,
			Label:    "Technical Specifications",
			Required: []domain.DocumentType{TypeEquipmentDatasheet, TypeCalibrationCertificate},
			Optional: []domain.DocumentType{TypeLoadTestReport},
		},
		{
			Category: domain.CategoryBasic,
			Label:    "Basic",
			Entity:   domain.EntityWorker,
			Required: []domain.DocumentType{TypeIDCard, TypeEmploymentContract, TypeSocialSecurity},
		},
	}
}
