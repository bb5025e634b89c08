package models

// Record is a filled-in form. RecordData maps field names to tagged values;
// the record exclusively owns this map.
type Record struct {
	ID         string                `json:"id"`
	FormID     string                `json:"formId"`
	RecordData map[string]FieldValue `json:"recordData"`
	Org        OrgSet                `json:"org"`
	CreatedBy  string                `json:"createdBy,omitempty"`
	CreatedAt  interface{}           `json:"createdAt,omitempty"`
	UpdatedAt  interface{}           `json:"updatedAt,omitempty"`
}

// Subrecord is a filled-in subform attached to a parent record. The wire
// keys "record" and "subform" are historical and kept for compatibility.
type Subrecord struct {
	ID        string                `json:"id"`
	RecordID  string                `json:"record"`
	SubformID string                `json:"subform"`
	Data      map[string]FieldValue `json:"data"`
	Org       OrgSet                `json:"org"`
	CreatedBy string                `json:"createdBy,omitempty"`
	CreatedAt interface{}           `json:"createdAt,omitempty"`
	UpdatedAt interface{}           `json:"updatedAt,omitempty"`
}

// RecordFromDoc builds a Record from a raw document. Older records store the
// form reference under "form" instead of "formId".
func RecordFromDoc(id string, data map[string]interface{}) *Record {
	formID := docString(data, "formId")
	if formID == "" {
		formID = docString(data, "form")
	}
	return &Record{
		ID:         id,
		FormID:     formID,
		RecordData: FieldValuesFrom(data["recordData"]),
		Org:        NormalizeOrgSet(data["org"]),
		CreatedBy:  docString(data, "createdBy"),
		CreatedAt:  data["createdAt"],
		UpdatedAt:  data["updatedAt"],
	}
}

// SubrecordFromDoc builds a Subrecord from a raw document.
func SubrecordFromDoc(id string, data map[string]interface{}) *Subrecord {
	return &Subrecord{
		ID:        id,
		RecordID:  docString(data, "record"),
		SubformID: docString(data, "subform"),
		Data:      FieldValuesFrom(data["data"]),
		Org:       NormalizeOrgSet(data["org"]),
		CreatedBy: docString(data, "createdBy"),
		CreatedAt: data["createdAt"],
		UpdatedAt: data["updatedAt"],
	}
}

// FieldValuesFrom decodes a stored data map of {value, type} entries.
// Entries missing the tagged shape are kept as opaque text values so legacy
// data stays visible.
func FieldValuesFrom(raw interface{}) map[string]FieldValue {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return map[string]FieldValue{}
	}
	out := make(map[string]FieldValue, len(m))
	for name, entry := range m {
		if tagged, ok := entry.(map[string]interface{}); ok {
			if _, hasValue := tagged["value"]; hasValue {
				out[name] = FieldValue{
					Value: tagged["value"],
					Type:  FieldType(docString(tagged, "type")),
				}
				continue
			}
		}
		out[name] = FieldValue{Value: entry, Type: FieldText}
	}
	return out
}

// FieldValueDocs converts a data map back to its stored representation.
func FieldValueDocs(data map[string]FieldValue) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for name, fv := range data {
		out[name] = map[string]interface{}{"value": fv.Value, "type": string(fv.Type)}
	}
	return out
}
