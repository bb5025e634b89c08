package models

// FormLine is one editor row of fields in a form creation payload. The
// stored form keeps a flat field list; rows exist only in the request shape.
type FormLine struct {
	Fields []FieldDef `json:"fields"`
}

// CreateFormRequest is the request body for creating a form.
type CreateFormRequest struct {
	Name  string     `json:"name" binding:"required"`
	Desc  string     `json:"desc,omitempty"`
	Lines []FormLine `json:"lines" binding:"required"`
}

// CreateSubformRequest is the request body for creating a subform.
type CreateSubformRequest struct {
	FormID string     `json:"formId" binding:"required"`
	Name   string     `json:"name" binding:"required"`
	Desc   string     `json:"desc,omitempty"`
	Fields []FieldDef `json:"fields"`
}

// CreateRecordRequest is the request body for creating a record.
type CreateRecordRequest struct {
	FormID     string                `json:"formId" binding:"required"`
	RecordData map[string]FieldValue `json:"recordData"`
}

// CreateSubrecordRequest is the request body for creating a subrecord.
type CreateSubrecordRequest struct {
	RecordID  string                `json:"record" binding:"required"`
	SubformID string                `json:"subform" binding:"required"`
	Data      map[string]FieldValue `json:"data"`
}

// RegisterUserRequest is the request body for provisioning a user in
// Firebase Auth with role/org custom claims.
type RegisterUserRequest struct {
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Name     string      `json:"name" binding:"required"`
	Role     string      `json:"role" binding:"required"`
	Org      interface{} `json:"org" binding:"required"` // scalar or array, stored as minted
}
