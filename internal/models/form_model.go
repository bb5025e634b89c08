package models

// FieldDef describes one field of a form or subform, including its grid
// placement in the layout editor.
type FieldDef struct {
	Name     string    `json:"name" firestore:"name"`
	Type     FieldType `json:"type" firestore:"type"`
	Label    string    `json:"label,omitempty" firestore:"label,omitempty"`
	Row      int       `json:"row,omitempty" firestore:"row,omitempty"`
	Col      int       `json:"col,omitempty" firestore:"col,omitempty"`
	ColSpan  int       `json:"colSpan,omitempty" firestore:"colSpan,omitempty"`
	Options  []string  `json:"options,omitempty" firestore:"options,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Hotspots []Hotspot `json:"hotspots,omitempty" firestore:"hotspots,omitempty"`
}

// Hotspot is one positional marker on a hotspot image field. Each marker
// carries its own option list; a selected value is encoded as
// "hotspot<index>:<option>".
type Hotspot struct {
	X       float64  `json:"x" firestore:"x"`
	Y       float64  `json:"y" firestore:"y"`
	Options []string `json:"options,omitempty" firestore:"options,omitempty"`
}

// Form is a user-built form definition owned by one or more organizations.
// CreatedAt/UpdatedAt stay untyped: stored documents carry native
// timestamps, {seconds,nanoseconds} pairs or ISO strings depending on age,
// and sorting goes through the paging normalizer.
type Form struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Desc      string      `json:"desc,omitempty"`
	Fields    []FieldDef  `json:"fields"`
	Org       OrgSet      `json:"org"`
	CreatedBy string      `json:"createdBy,omitempty"`
	CreatedAt interface{} `json:"createdAt,omitempty"`
	UpdatedAt interface{} `json:"updatedAt,omitempty"`
}

// Subform is a child form attached to a parent form. The parent reference is
// a weak lookup key; deleting the parent does not cascade.
type Subform struct {
	ID        string      `json:"id"`
	FormID    string      `json:"formId"`
	Name      string      `json:"name"`
	Desc      string      `json:"desc,omitempty"`
	Fields    []FieldDef  `json:"fields"`
	Org       OrgSet      `json:"org"`
	CreatedBy string      `json:"createdBy,omitempty"`
	CreatedAt interface{} `json:"createdAt,omitempty"`
	UpdatedAt interface{} `json:"updatedAt,omitempty"`
}

// FormFromDoc builds a Form from a raw document, tolerating the legacy
// scalar org encoding.
func FormFromDoc(id string, data map[string]interface{}) *Form {
	return &Form{
		ID:        id,
		Name:      docString(data, "name"),
		Desc:      docString(data, "desc"),
		Fields:    FieldDefsFrom(data["fields"]),
		Org:       NormalizeOrgSet(data["org"]),
		CreatedBy: docString(data, "createdBy"),
		CreatedAt: data["createdAt"],
		UpdatedAt: data["updatedAt"],
	}
}

// SubformFromDoc builds a Subform from a raw document. Older documents store
// the parent reference under "form" instead of "formId".
func SubformFromDoc(id string, data map[string]interface{}) *Subform {
	formID := docString(data, "formId")
	if formID == "" {
		formID = docString(data, "form")
	}
	return &Subform{
		ID:        id,
		FormID:    formID,
		Name:      docString(data, "name"),
		Desc:      docString(data, "desc"),
		Fields:    FieldDefsFrom(data["fields"]),
		Org:       NormalizeOrgSet(data["org"]),
		CreatedBy: docString(data, "createdBy"),
		CreatedAt: data["createdAt"],
		UpdatedAt: data["updatedAt"],
	}
}

// FieldDefsFrom decodes a stored field list. Entries that are not maps are
// skipped rather than failing the document.
func FieldDefsFrom(raw interface{}) []FieldDef {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]FieldDef, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, FieldDef{
			Name:     docString(m, "name"),
			Type:     FieldType(docString(m, "type")),
			Label:    docString(m, "label"),
			Row:      docInt(m, "row"),
			Col:      docInt(m, "col"),
			ColSpan:  docInt(m, "colSpan"),
			Options:  docStrings(m, "options"),
			ImageURL: docString(m, "imageUrl"),
			Hotspots: hotspotsFrom(m["hotspots"]),
		})
	}
	return out
}

func hotspotsFrom(raw interface{}) []Hotspot {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Hotspot, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Hotspot{
			X:       docFloat(m, "x"),
			Y:       docFloat(m, "y"),
			Options: docStrings(m, "options"),
		})
	}
	return out
}
