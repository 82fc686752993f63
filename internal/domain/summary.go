package domain

import (
	"encoding/json"
)

// NotFound is the sentinel the model writes for fields absent from the report.
const NotFound = "Not Found"

// Canonical summary keys, in the order they are declared to the model.
const (
	KeyPatientName      = "Patient_Name"
	KeyHospitalOrClinic = "Hospital_Or_Clinic"
	KeyDoctorName       = "Doctor_Name"
	KeyEnglishSummary   = "English_Summary"
	KeyHindiSummary     = "Hindi_Summary"
	KeyDiagnosis        = "Diagnosis"
	KeyPrescription     = "Prescription"
	KeyFollowUp         = "Follow_Up"
)

// SummaryKeys lists the eight keys of a structured summary.
var SummaryKeys = []string{
	KeyPatientName,
	KeyHospitalOrClinic,
	KeyDoctorName,
	KeyEnglishSummary,
	KeyHindiSummary,
	KeyDiagnosis,
	KeyPrescription,
	KeyFollowUp,
}

const (
	SummaryKindStructured = "structured"
	SummaryKindFallback   = "fallback"
)

// Summary is the result of one summarization request. It is implemented only by
// StructuredSummary and FallbackSummary.
type Summary interface {
	Kind() string
	isSummary()
}

// SummaryFields is the typed view of the canonical structured summary.
type SummaryFields struct {
	PatientName      string `json:"Patient_Name"`
	HospitalOrClinic string `json:"Hospital_Or_Clinic"`
	DoctorName       string `json:"Doctor_Name"`
	EnglishSummary   string `json:"English_Summary"`
	HindiSummary     string `json:"Hindi_Summary"`
	Diagnosis        string `json:"Diagnosis"`
	Prescription     string `json:"Prescription"`
	FollowUp         string `json:"Follow_Up"`
}

// StructuredSummary is a JSON object returned by the model, kept byte-for-byte.
type StructuredSummary struct {
	raw json.RawMessage
}

// NewStructuredSummary wraps a JSON object. The caller guarantees raw is an object.
func NewStructuredSummary(raw json.RawMessage) StructuredSummary {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return StructuredSummary{raw: cp}
}

func (StructuredSummary) Kind() string { return SummaryKindStructured }
func (StructuredSummary) isSummary()   {}

// Raw returns the object as the model produced it.
func (s StructuredSummary) Raw() json.RawMessage { return s.raw }

// Fields decodes the canonical keys. Keys of the wrong type fail the decode.
func (s StructuredSummary) Fields() (SummaryFields, error) {
	var f SummaryFields
	err := json.Unmarshal(s.raw, &f)
	return f, err
}

func (s StructuredSummary) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("{}"), nil
	}
	return s.raw, nil
}

// FallbackSummary wraps model output that could not be parsed as a JSON object.
type FallbackSummary struct {
	Summary string `json:"summary"`
}

func (FallbackSummary) Kind() string { return SummaryKindFallback }
func (FallbackSummary) isSummary()   {}

// SummaryResponse is the success body of the summarize endpoint.
type SummaryResponse struct {
	Result Summary `json:"result"`
}
