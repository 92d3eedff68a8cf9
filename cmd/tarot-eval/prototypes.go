package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tarotvision-server-go/internal/domain/prototype"
)

var prototypesCmd = &cobra.Command{
	Use:   "prototypes",
	Short: "Build the card prototype library",
	Long: `Embed the canonical card prompts for each deck style and write the
resulting prototype library to disk. The server loads this file at
startup, so rebuild it whenever the model version changes.`,
	RunE: runPrototypes,
}

var (
	protoDeckStyles   []string
	protoIncludeMinor bool
	protoOutPath      string
)

func init() {
	rootCmd.AddCommand(prototypesCmd)
	prototypesCmd.Flags().StringSliceVar(&protoDeckStyles, "deck-style", nil,
		"Deck styles to build (default: all known styles)")
	prototypesCmd.Flags().BoolVar(&protoIncludeMinor, "include-minor", false,
		"Include the 56 minor arcana in addition to the 22 majors")
	prototypesCmd.Flags().StringVar(&protoOutPath, "out", "",
		"Output path (default: vision.prototypes_path from the config)")
}

func runPrototypes(cmd *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	styles := protoDeckStyles
	if len(styles) == 0 {
		styles = prototype.KnownDeckStyles
	}

	builder := prototype.NewBuilder(engine, globalLogger)
	library, err := builder.Build(cmd.Context(), styles, protoIncludeMinor)
	if err != nil {
		return fmt.Errorf("build prototypes: %w", err)
	}

	outPath := protoOutPath
	if outPath == "" {
		outPath = globalConfig.Vision.PrototypesPath
	}
	if err := library.Save(outPath); err != nil {
		return fmt.Errorf("save prototype library: %w", err)
	}

	fmt.Printf("wrote %s: model %s, %d dims, decks %s\n",
		outPath, library.ModelVersion(), library.Dimensions(),
		strings.Join(library.DeckStyles(), ", "))
	return nil
}
