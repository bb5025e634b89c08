// Command dbtool runs one-off maintenance jobs against the live database:
// recomputing subrecord rollup counters, renaming record data keys, and
// seeding hotspot option lists. It shares the repository layer with the
// server so the tolerant document decoding applies here too.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"forms-backend-go/internal/config"
	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
)

const usage = `Usage: dbtool <command> [flags]

Commands:
  recalc         Recompute rollup counters for a subform, or one (record, subform) pair
  rename         Rename a recordData key across all records of a form
  seed-hotspots  Load hotspot option lists into a subform field from a JSON file
  find           List records of a form whose field matches a text or numeric value
  import         Bulk-create records for a form from a JSON file of rows

Environment:
  FIREBASE_PROJECT_ID, and either GOOGLE_APPLICATION_CREDENTIALS or
  FIREBASE_SERVICE_ACCOUNT_JSON_BASE64.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	switch os.Args[1] {
	case "recalc":
		err = runRecalc(ctx, logger, os.Args[2:])
	case "rename":
		err = runRename(ctx, logger, os.Args[2:])
	case "seed-hotspots":
		err = runSeedHotspots(ctx, logger, os.Args[2:])
	case "find":
		err = runFind(ctx, logger, os.Args[2:])
	case "import":
		err = runImport(ctx, logger, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

// toolConfig reads only the Firebase keys; the server's full config
// validation would demand CLIENT_URL, which a maintenance run has no use
// for.
func toolConfig() *config.Config {
	viper.AutomaticEnv()
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	return &config.Config{
		FirebaseProjectID:                viper.GetString("FIREBASE_PROJECT_ID"),
		GoogleApplicationCredentials:     viper.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseServiceAccountJSONBase64: viper.GetString("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"),
	}
}

type repos struct {
	forms      db.FormRepository
	subforms   db.SubformRepository
	records    db.RecordRepository
	subrecords db.SubrecordRepository
}

func connect(ctx context.Context, logger *zap.Logger) (*repos, error) {
	cfg := toolConfig()
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if err := db.InitFirebase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("init firebase: %w", err)
	}
	client := db.GetFirestoreClient()
	return &repos{
		forms:      db.NewFirestoreFormRepository(client, logger),
		subforms:   db.NewFirestoreSubformRepository(client, logger),
		records:    db.NewFirestoreRecordRepository(client, logger),
		subrecords: db.NewFirestoreSubrecordRepository(client, logger),
	}, nil
}

func runRecalc(ctx context.Context, logger *zap.Logger, args []string) error {
	flags := pflag.NewFlagSet("recalc", pflag.ExitOnError)
	subformID := flags.String("subform-id", "", "subform whose counters to recompute (required)")
	recordID := flags.String("record-id", "", "limit the recompute to one record")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *subformID == "" {
		return errors.New("--subform-id is required")
	}

	r, err := connect(ctx, logger)
	if err != nil {
		return err
	}

	if *recordID != "" {
		return recalcRecord(ctx, logger, r, *recordID, *subformID)
	}

	subrecords, err := r.subrecords.ListBySubform(ctx, *subformID)
	if err != nil {
		return fmt.Errorf("list subrecords: %w", err)
	}
	if len(subrecords) == 0 {
		logger.Info("No subrecords found for subform", zap.String("subformID", *subformID))
		return nil
	}

	seen := make(map[string]struct{})
	var recordIDs []string
	for _, sr := range subrecords {
		if sr.RecordID == "" {
			continue
		}
		if _, ok := seen[sr.RecordID]; ok {
			continue
		}
		seen[sr.RecordID] = struct{}{}
		recordIDs = append(recordIDs, sr.RecordID)
	}
	sort.Strings(recordIDs)

	for _, id := range recordIDs {
		if err := recalcRecord(ctx, logger, r, id, *subformID); err != nil {
			return err
		}
	}
	logger.Info("Recalculation complete", zap.Int("records", len(recordIDs)))
	return nil
}

func recalcRecord(ctx context.Context, logger *zap.Logger, r *repos, recordID, subformID string) error {
	// Counter key is the subform's display name; fall back to the ID when
	// the subform document is gone.
	key := subformID
	if subform, err := r.subforms.GetByID(ctx, subformID); err == nil && subform.Name != "" {
		key = subform.Name
	}

	count, err := r.subrecords.CountByRecordSubform(ctx, recordID, subformID)
	if err != nil {
		return fmt.Errorf("count subrecords for record %s: %w", recordID, err)
	}

	record, err := r.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("Record not found, skipping", zap.String("recordID", recordID))
			return nil
		}
		return fmt.Errorf("get record %s: %w", recordID, err)
	}

	data := record.RecordData
	if data == nil {
		data = make(map[string]models.FieldValue)
	}
	data[key] = models.FieldValue{Value: count, Type: models.FieldNumber}

	err = r.records.Update(ctx, recordID, map[string]interface{}{
		"recordData": models.FieldValueDocs(data),
		"updatedAt":  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("update record %s: %w", recordID, err)
	}
	logger.Info("Updated rollup counter",
		zap.String("recordID", recordID),
		zap.String("counter", key),
		zap.Int("count", count),
	)
	return nil
}

func runRename(ctx context.Context, logger *zap.Logger, args []string) error {
	flags := pflag.NewFlagSet("rename", pflag.ExitOnError)
	formID := flags.String("form-id", "", "form whose records to update (required)")
	oldName := flags.String("old-name", "", "recordData key to rename (required)")
	newName := flags.String("new-name", "", "new key name (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *formID == "" || *oldName == "" || *newName == "" {
		return errors.New("--form-id, --old-name and --new-name are required")
	}

	r, err := connect(ctx, logger)
	if err != nil {
		return err
	}

	// ListByForm already merges the two historical form-reference keys and
	// dedupes by document ID.
	records, err := r.records.ListByForm(ctx, *formID)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		logger.Info("No records found for form", zap.String("formID", *formID))
		return nil
	}

	renamed := 0
	for _, record := range records {
		fv, ok := record.RecordData[*oldName]
		if !ok {
			continue
		}
		record.RecordData[*newName] = fv
		delete(record.RecordData, *oldName)

		err := r.records.Update(ctx, record.ID, map[string]interface{}{
			"recordData": models.FieldValueDocs(record.RecordData),
			"updatedAt":  time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("update record %s: %w", record.ID, err)
		}
		renamed++
		logger.Info("Updated record", zap.String("recordID", record.ID))
	}
	logger.Info("Rename complete", zap.Int("renamed", renamed), zap.Int("scanned", len(records)))
	return nil
}

func runSeedHotspots(ctx context.Context, logger *zap.Logger, args []string) error {
	flags := pflag.NewFlagSet("seed-hotspots", pflag.ExitOnError)
	subformID := flags.String("subform-id", "", "subform holding the hotspot field (required)")
	jsonPath := flags.String("json-file", "", "option source: array of strings, or of {area, name} objects (required)")
	fieldName := flags.String("field", "", "target field name or label (default: first hotspot field)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *subformID == "" || *jsonPath == "" {
		return errors.New("--subform-id and --json-file are required")
	}

	options, err := readHotspotOptions(*jsonPath)
	if err != nil {
		return err
	}

	r, err := connect(ctx, logger)
	if err != nil {
		return err
	}

	subform, err := r.subforms.GetByID(ctx, *subformID)
	if err != nil {
		return fmt.Errorf("get subform %s: %w", *subformID, err)
	}

	idx := findHotspotField(subform.Fields, *fieldName)
	if idx == -1 {
		return fmt.Errorf("no matching hotspot field in subform %s", *subformID)
	}
	field := &subform.Fields[idx]
	if field.Type != models.FieldHotspot {
		logger.Warn("Target field is not a hotspot field, updating anyway",
			zap.String("field", field.Name),
			zap.String("type", string(field.Type)),
		)
	}
	if len(field.Hotspots) == 0 {
		logger.Warn("Target field has no hotspots; nothing to seed", zap.String("field", field.Name))
		return nil
	}

	// Area grouping is 1-based by hotspot position; a flat list applies to
	// every hotspot.
	for i := range field.Hotspots {
		field.Hotspots[i].Options = options.forArea(i + 1)
	}

	err = r.subforms.Update(ctx, *subformID, map[string]interface{}{
		"fields":    subform.Fields,
		"updatedAt": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("update subform %s: %w", *subformID, err)
	}
	logger.Info("Hotspot options seeded",
		zap.String("subformID", *subformID),
		zap.String("field", field.Name),
		zap.Int("hotspots", len(field.Hotspots)),
		zap.Int("options", options.total()),
	)
	return nil
}

func runFind(ctx context.Context, logger *zap.Logger, args []string) error {
	flags := pflag.NewFlagSet("find", pflag.ExitOnError)
	formID := flags.String("form-id", "", "form whose records to search (required)")
	fieldName := flags.String("field", "", "recordData key to match against (required)")
	text := flags.String("text", "", "substring match on the field's display text")
	number := flags.Float64("number", 0, "exact numeric match (comma-decimal values normalized)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *formID == "" || *fieldName == "" {
		return errors.New("--form-id and --field are required")
	}
	numeric := flags.Changed("number")
	if *text == "" && !numeric {
		return errors.New("one of --text or --number is required")
	}

	r, err := connect(ctx, logger)
	if err != nil {
		return err
	}

	records, err := r.records.ListByForm(ctx, *formID)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	matched := 0
	for _, record := range records {
		fv, ok := record.RecordData[*fieldName]
		if !ok {
			continue
		}
		if numeric {
			n, isNum := models.SearchNumber(fv.Value)
			if !isNum || n != *number {
				continue
			}
		} else if !models.SearchText(fv.Value, *text) {
			continue
		}
		matched++
		fmt.Printf("%s\t%v\n", record.ID, fv.Value)
	}
	logger.Info("Search complete", zap.Int("matched", matched), zap.Int("scanned", len(records)))
	return nil
}

func runImport(ctx context.Context, logger *zap.Logger, args []string) error {
	flags := pflag.NewFlagSet("import", pflag.ExitOnError)
	formID := flags.String("form-id", "", "target form (required)")
	jsonPath := flags.String("json-file", "", "JSON array of row objects keyed by field name (required)")
	orgs := flags.StringSlice("org", nil, "org(s) stamped on the imported records (required)")
	createdBy := flags.String("created-by", "dbtool", "createdBy stamp for the imported records")
	dryRun := flags.Bool("dry-run", false, "coerce and report without writing")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *formID == "" || *jsonPath == "" {
		return errors.New("--form-id and --json-file are required")
	}
	orgSet := models.NormalizeOrgSet(*orgs)
	if len(orgSet) == 0 {
		return errors.New("--org is required")
	}

	raw, err := os.ReadFile(*jsonPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", *jsonPath, err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("parse %s: expected a JSON array of row objects: %w", *jsonPath, err)
	}
	if len(rows) == 0 {
		logger.Info("No rows to import", zap.String("file", *jsonPath))
		return nil
	}

	r, err := connect(ctx, logger)
	if err != nil {
		return err
	}

	form, err := r.forms.GetByID(ctx, *formID)
	if err != nil {
		return fmt.Errorf("get form %s: %w", *formID, err)
	}

	imported := 0
	skipped := 0
	now := time.Now().UTC()
	for i, row := range rows {
		data := buildRecordData(form.Fields, row)
		if len(data) == 0 {
			skipped++
			logger.Warn("Row matched no form fields, skipping", zap.Int("row", i))
			continue
		}
		if *dryRun {
			imported++
			continue
		}
		id, err := r.records.Create(ctx, &models.Record{
			FormID:     *formID,
			RecordData: data,
			Org:        orgSet,
			CreatedBy:  *createdBy,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("create record for row %d: %w", i, err)
		}
		imported++
		logger.Info("Imported record", zap.Int("row", i), zap.String("recordID", id))
	}
	logger.Info("Import complete",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.Bool("dryRun", *dryRun),
	)
	return nil
}

// buildRecordData coerces one imported row into the stored record-data
// shape using the form's field definitions. Cells that cannot be coerced
// are dropped; columns with no matching field definition are ignored.
func buildRecordData(fields []models.FieldDef, row map[string]interface{}) map[string]models.FieldValue {
	defs := make(map[string]models.FieldDef, len(fields))
	for _, f := range fields {
		defs[f.Name] = f
	}

	data := make(map[string]models.FieldValue)
	for name, raw := range row {
		def, ok := defs[name]
		if !ok {
			continue
		}
		if def.Type == models.FieldHotspot {
			if encoded, ok := encodeHotspotValue(raw); ok {
				data[name] = models.FieldValue{Value: encoded, Type: def.Type}
			}
			continue
		}
		value, err := models.Coerce(raw, def.Type)
		if err != nil {
			continue
		}
		data[name] = models.FieldValue{Value: value, Type: def.Type}
	}
	return data
}

// encodeHotspotValue accepts an already-encoded selection string or an
// {area, option} object and yields the stored "hotspot<area>:<option>"
// form. The area defaults to 1 when the object omits it.
func encodeHotspotValue(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case map[string]interface{}:
		option, _ := v["option"].(string)
		option = strings.TrimSpace(option)
		if option == "" {
			return "", false
		}
		area := 1
		if n, ok := v["area"].(float64); ok && n >= 1 {
			area = int(n)
		}
		return models.EncodeHotspotSelection(area, option), true
	default:
		return "", false
	}
}

// hotspotOptions is the parsed option source: either one flat list shared by
// all hotspots, or per-area lists keyed by 1-based hotspot position.
type hotspotOptions struct {
	flat   []string
	byArea map[int][]string
}

func (o hotspotOptions) forArea(area int) []string {
	if o.byArea != nil {
		return o.byArea[area]
	}
	return o.flat
}

func (o hotspotOptions) total() int {
	if o.byArea != nil {
		n := 0
		for _, names := range o.byArea {
			n += len(names)
		}
		return n
	}
	return len(o.flat)
}

func readHotspotOptions(path string) (hotspotOptions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return hotspotOptions{}, fmt.Errorf("read %s: %w", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return hotspotOptions{}, fmt.Errorf("parse %s: expected a JSON array: %w", path, err)
	}

	var areaEntries []struct {
		Area json.Number `json:"area"`
		Name string      `json:"name"`
	}
	if err := json.Unmarshal(raw, &areaEntries); err == nil {
		byArea := make(map[int][]string)
		seen := make(map[int]map[string]struct{})
		for _, e := range areaEntries {
			name := strings.TrimSpace(e.Name)
			area, convErr := strconv.Atoi(e.Area.String())
			if name == "" || convErr != nil {
				continue
			}
			if seen[area] == nil {
				seen[area] = make(map[string]struct{})
			}
			if _, dup := seen[area][name]; dup {
				continue
			}
			seen[area][name] = struct{}{}
			byArea[area] = append(byArea[area], name)
		}
		if len(byArea) > 0 {
			return hotspotOptions{byArea: byArea}, nil
		}
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return hotspotOptions{}, fmt.Errorf("parse %s: expected strings or {area, name} objects", path)
	}
	var flat []string
	seen := make(map[string]struct{})
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		flat = append(flat, name)
	}
	if len(flat) == 0 {
		return hotspotOptions{}, fmt.Errorf("parse %s: no usable option names", path)
	}
	return hotspotOptions{flat: flat}, nil
}

// findHotspotField locates the target field by name or label
// (case-insensitive); with no name given, the first hotspot-typed field
// wins.
func findHotspotField(fields []models.FieldDef, name string) int {
	if name == "" {
		for i, f := range fields {
			if f.Type == models.FieldHotspot {
				return i
			}
		}
		return -1
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i, f := range fields {
		if strings.ToLower(strings.TrimSpace(f.Name)) == want ||
			strings.ToLower(strings.TrimSpace(f.Label)) == want {
			return i
		}
	}
	return -1
}
