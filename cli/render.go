package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fkorte/briefroll/config"
	"github.com/fkorte/briefroll/content"
	"github.com/fkorte/briefroll/dsl"
)

func init() {
	var (
		in, data                     string
		pngPath, txtPath, escposPath string
		debugPath                    string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a .brief file through the receipt pipeline",
		Long: `Parses a .brief document, binds ${path} placeholders against the
--data JSON and renders it exactly like a daily brief. Without explicit
output flags the configured output paths are used.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			doc, err := loadBrief(in, data)
			if err != nil {
				return err
			}
			if pngPath != "" || txtPath != "" || escposPath != "" {
				a.cfg.Outputs = config.Outputs{PNG: pngPath, Text: txtPath, ESCPOS: escposPath}
			}
			a.layoutDebug = debugPath
			outputs, _, err := a.renderAll(doc)
			if err != nil {
				return err
			}
			for _, out := range outputs {
				fmt.Println(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "path to the .brief file")
	cmd.MarkFlagRequired("in")
	cmd.Flags().StringVar(&data, "data", "", "JSON bound to ${path} placeholders, inline or @file")
	cmd.Flags().StringVar(&pngPath, "png", "", "write only the PNG, to this path")
	cmd.Flags().StringVar(&txtPath, "txt", "", "write only the text mirror, to this path")
	cmd.Flags().StringVar(&escposPath, "escpos", "", "write only the command stream, to this path")
	cmd.Flags().StringVar(&debugPath, "debug", "", "also dump the composed layout as JSON, to this path")
	rootCmd.AddCommand(cmd)
}

func loadBrief(path, data string) (content.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open brief: %w", err)
	}
	defer f.Close()

	doc, err := dsl.Parse(f)
	if err != nil {
		return nil, err
	}

	var bound any
	if data != "" {
		raw := []byte(data)
		if strings.HasPrefix(data, "@") {
			raw, err = os.ReadFile(data[1:])
			if err != nil {
				return nil, fmt.Errorf("read data file: %w", err)
			}
		}
		if err := json.Unmarshal(raw, &bound); err != nil {
			return nil, fmt.Errorf("parse data JSON: %w", err)
		}
	}
	return doc.Content(bound)
}
