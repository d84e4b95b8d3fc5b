package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/catalog"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/store"
)

// addScopeFlags registers --board, --class, --subject and --topic.
func addScopeFlags(cmd *cobra.Command, board string) {
	f := cmd.Flags()
	f.String("board", board, "Examination board")
	f.String("class", "", `Class, e.g. "Class 8"`)
	f.String("subject", "", `Subject, e.g. "Physics"`)
	f.StringP("topic", "t", "", `Topic name, theme number ("3") or unique part of a name`)
}

func scopeFlags(cmd *cobra.Command) store.Scope {
	board, _ := cmd.Flags().GetString("board")
	class, _ := cmd.Flags().GetString("class")
	subject, _ := cmd.Flags().GetString("subject")
	topic, _ := cmd.Flags().GetString("topic")
	return store.Scope{Board: board, ClassName: class, Subject: subject, Topic: topic}
}

// resolveScope reads the scope flags and requires a class, subject and
// topic. When the catalogue lists topics for the subject the topic flag is
// matched against them; otherwise it is used as given.
func resolveScope(cmd *cobra.Command, cat *catalog.Catalog) (store.Scope, error) {
	s := scopeFlags(cmd)
	if s.Board == "" {
		s.Board = quiz.DefaultBoard
	}
	if s.ClassName == "" || s.Subject == "" || s.Topic == "" {
		return store.Scope{}, errors.New("--class, --subject and --topic are required")
	}
	if len(cat.Topics(s.Board, s.ClassName, s.Subject)) == 0 {
		return s, nil
	}
	t, err := cat.Resolve(s.Board, s.ClassName, s.Subject, s.Topic)
	if err != nil {
		return store.Scope{}, err
	}
	s.Topic = t.Name
	return s, nil
}
