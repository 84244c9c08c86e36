package lark

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FieldKind identifies the decoded shape of a Bitable cell value.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
	KindCheckbox
	KindMultiSelect
	KindUsers
	KindAttachments
	KindOpaque
)

// Integral numbers inside this range are interpreted as epoch-millisecond
// dates, which is how the records API serializes date cells. A plain count
// that lands in the window is indistinguishable from a date without the
// table schema; anything with a fractional part is kept as a number.
const (
	minDateMillis = int64(1_000_000_000_000) // 2001-09-09
	maxDateMillis = int64(4_100_000_000_000) // 2099-11-28
)

// FieldValue is one cell value from the records API. The API types cells by
// the table schema, which the gateway does not fetch, so values are decoded
// structurally into a closed set of kinds with Raw kept as the opaque
// fallback. Format is total: every kind, including opaque, renders.
type FieldValue struct {
	Kind        FieldKind
	Text        string
	Number      float64
	Date        time.Time
	Bool        bool
	Options     []string
	Users       []string
	Attachments []string
	Raw         json.RawMessage
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	v.Raw = append(json.RawMessage(nil), data...)

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Kind = KindText
		v.Text = s
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.Kind = KindCheckbox
		v.Bool = b
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		if ms := int64(n); n == float64(ms) && ms >= minDateMillis && ms <= maxDateMillis {
			v.Kind = KindDate
			v.Date = time.UnixMilli(ms).UTC()
			return nil
		}
		v.Kind = KindNumber
		v.Number = n
		return nil
	}

	var opts []string
	if err := json.Unmarshal(data, &opts); err == nil {
		v.Kind = KindMultiSelect
		v.Options = opts
		return nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil && len(items) > 0 {
		if texts, ok := collectStrings(items, "text"); ok {
			// rich-text segments collapse into one text value
			v.Kind = KindText
			v.Text = strings.Join(texts, "")
			return nil
		}
		if _, isFile := items[0]["file_token"]; isFile {
			if names, ok := collectStrings(items, "name"); ok {
				v.Kind = KindAttachments
				v.Attachments = names
				return nil
			}
		}
		if names, ok := collectStrings(items, "name"); ok {
			v.Kind = KindUsers
			v.Users = names
			return nil
		}
	}

	v.Kind = KindOpaque
	return nil
}

func collectStrings(items []map[string]json.RawMessage, key string) ([]string, bool) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		raw, ok := item[key]
		if !ok {
			return nil, false
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Format renders a cell value for a chat message.
func (v FieldValue) Format() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindDate:
		return v.Date.Format("2006-01-02 15:04")
	case KindCheckbox:
		if v.Bool {
			return "✓"
		}
		return "✗"
	case KindMultiSelect:
		return strings.Join(v.Options, ", ")
	case KindUsers:
		return strings.Join(v.Users, ", ")
	case KindAttachments:
		return strings.Join(v.Attachments, ", ")
	default:
		return string(v.Raw)
	}
}

// FormatTableList renders the table listing sent back to the chat.
func FormatTableList(items []TableInfo) string {
	if len(items) == 0 {
		return "テーブルが見つかりませんでした。"
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("📊 %s\nID: %s", item.Name, item.TableID))
	}

	return "【Bitableテーブル一覧】\n\n" + strings.Join(lines, "\n\n")
}

// FormatRecordList renders the record listing sent back to the chat.
// Field order is made deterministic by sorting field names.
func FormatRecordList(records []RecordInfo) string {
	if len(records) == 0 {
		return "レコードが見つかりませんでした。"
	}

	blocks := make([]string, 0, len(records))
	for _, record := range records {
		names := make([]string, 0, len(record.Fields))
		for name := range record.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		lines := make([]string, 0, len(names)+1)
		lines = append(lines, fmt.Sprintf("📝 レコードID: %s", record.RecordID))
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("%s: %s", name, record.Fields[name].Format()))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return "【Bitableレコード一覧】\n\n" + strings.Join(blocks, "\n\n")
}
