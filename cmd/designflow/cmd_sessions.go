package main

import (
	"fmt"

	"designflow/internal/conversation"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved conversation sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := conversation.NewStore(cfg.Paths.Sessions)
		ids, err := store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No saved sessions.")
			return nil
		}
		for _, id := range ids {
			session, err := store.Load(id)
			if err != nil {
				fmt.Printf("%s  (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Printf("%s  %d messages  started %s\n",
				id, len(session.Messages), session.StartedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}
