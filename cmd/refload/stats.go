package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cancergen/refload/internal/store"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <database>",
		Short: "Show row counts for a loaded reference database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0])
		},
	}
}

func runStats(dbPath string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.Counts()
	if err != nil {
		return err
	}

	fmt.Printf("genes:       %d\n", counts.Genes)
	fmt.Printf("transcripts: %d\n", counts.Transcripts)
	fmt.Printf("exons:       %d\n", counts.Exons)
	fmt.Printf("proteins:    %d\n", counts.Proteins)
	return nil
}
