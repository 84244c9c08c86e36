// Package command classifies normalized chat text into a command and
// produces the reply body by dispatching to the matching backend.
package command

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"lark-base-gateway/internal/lark"
)

// Kind is the classified intent of an inbound message.
type Kind int

const (
	KindFreeText Kind = iota
	KindListTables
	KindListRecords
)

// Command is the parsed intent plus its argument, if any.
type Command struct {
	Kind    Kind
	TableID string
	Text    string
}

type matchMode int

const (
	matchExact matchMode = iota
	matchPrefix
)

// The matcher is an ordered literal table so adding a locale alias is a
// data change. Prefix entries consume the token after the literal as the
// table id; the bare aliases map to an empty id, which yields the usage
// hint instead of a backend call.
var aliases = []struct {
	mode    matchMode
	literal string
	kind    Kind
}{
	{matchExact, "/tables", KindListTables},
	{matchExact, "テーブル一覧", KindListTables},
	{matchPrefix, "/records ", KindListRecords},
	{matchPrefix, "レコード一覧 ", KindListRecords},
	{matchExact, "/records", KindListRecords},
	{matchExact, "レコード一覧", KindListRecords},
}

// Parse classifies normalized (trimmed) message text. It is deterministic
// and total: anything that matches no alias is free text.
func Parse(text string) Command {
	for _, a := range aliases {
		switch a.mode {
		case matchExact:
			if text == a.literal {
				return Command{Kind: a.kind}
			}
		case matchPrefix:
			if strings.HasPrefix(text, a.literal) {
				arg := strings.TrimPrefix(text, a.literal)
				if i := strings.IndexByte(arg, ' '); i >= 0 {
					arg = arg[:i]
				}
				return Command{Kind: a.kind, TableID: arg}
			}
		}
	}
	return Command{Kind: KindFreeText, Text: text}
}

const (
	usageHintReply      = "テーブルIDを指定してください。\n例: レコード一覧 tbl3j90PZ5zu4HgG"
	tablesFailedReply   = "テーブル一覧の取得に失敗しました。"
	recordsFailedReply  = "レコード一覧の取得に失敗しました。"
	notConfiguredReply  = "Bitableが設定されていないため、この操作は利用できません。"
	llmUnavailableReply = "申し訳ありません。OpenAI APIでエラーが発生しました。"
)

// TableReader is the slice of the Bitable client the router needs.
type TableReader interface {
	ListTables(ctx context.Context) ([]lark.TableInfo, error)
	ListRecords(ctx context.Context, tableID string) ([]lark.RecordInfo, error)
}

// Completer answers free-form text. Implementations report failure through
// their own side channel and always return a printable reply.
type Completer interface {
	Complete(ctx context.Context, text string) string
}

// Router dispatches parsed commands to the table or language-model backend.
type Router struct {
	tables TableReader
	llm    Completer
}

// NewRouter creates a router over the given backends. Either backend may be
// nil when its feature is not configured; the affected commands then answer
// with a configuration notice instead of failing.
func NewRouter(tables TableReader, llm Completer) *Router {
	return &Router{tables: tables, llm: llm}
}

// Route produces the reply text for normalized message text. Read-path
// failures are logged for the operator and replaced with fixed apologetic
// strings; the end user never sees a raw error.
func (r *Router) Route(ctx context.Context, text string) string {
	cmd := Parse(text)

	switch cmd.Kind {
	case KindListTables:
		if r.tables == nil {
			return notConfiguredReply
		}
		tables, err := r.tables.ListTables(ctx)
		if err != nil {
			logrus.Errorf("Failed to list tables: %v", err)
			if errors.Is(err, lark.ErrConfig) {
				return notConfiguredReply
			}
			return tablesFailedReply
		}
		return lark.FormatTableList(tables)

	case KindListRecords:
		if cmd.TableID == "" {
			return usageHintReply
		}
		if r.tables == nil {
			return notConfiguredReply
		}
		records, err := r.tables.ListRecords(ctx, cmd.TableID)
		if err != nil {
			logrus.Errorf("Failed to list records of table %s: %v", cmd.TableID, err)
			if errors.Is(err, lark.ErrConfig) {
				return notConfiguredReply
			}
			return recordsFailedReply
		}
		return lark.FormatRecordList(records)

	default:
		if r.llm == nil {
			return llmUnavailableReply
		}
		return r.llm.Complete(ctx, cmd.Text)
	}
}
