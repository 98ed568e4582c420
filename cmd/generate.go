package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstore/internal/qr"
	"github.com/cristianadrielbraun/qrstore/internal/render"
	"github.com/cristianadrielbraun/qrstore/internal/service"
)

type generateFlags struct {
	data     string
	logoURL  string
	logoFile string
	dark     string
	light    string
	level    string
	margin   int
	width    int
	logoSize float64
	rounded  bool
	baseURL  string
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render one QR code into storage and print its URL",
	Example: `  qrstore generate --data 'LPA:1$rsp.example.com$ABC123'
  qrstore generate --data https://example.com --logo-url https://example.com/logo.png --width 600`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd, genFlags)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.data, "data", "", "Text or URL to encode (required)")
	f.StringVar(&genFlags.logoURL, "logo-url", "", "URL of a logo to place in the center")
	f.StringVar(&genFlags.logoFile, "logo-file", "", "Local logo file, used instead of --logo-url")
	f.StringVar(&genFlags.dark, "dark", render.Hex(render.DefaultDark), "Module color")
	f.StringVar(&genFlags.light, "light", render.Hex(render.DefaultLight), "Background color")
	f.StringVar(&genFlags.level, "level", render.DefaultLevel.String(), "Error correction level: L, M, Q or H")
	f.IntVar(&genFlags.margin, "margin", render.DefaultMargin, "Margin in pixels")
	f.IntVar(&genFlags.width, "width", render.DefaultWidth, "Target width in pixels")
	f.Float64Var(&genFlags.logoSize, "logo-size", render.DefaultLogoFraction, "Logo size as a fraction of the symbol")
	f.BoolVar(&genFlags.rounded, "rounded", true, "Draw rounded modules")
	f.StringVar(&genFlags.baseURL, "base-url", "", "Base URL for the printed image URL")
	_ = generateCmd.MarkFlagRequired("data")
}

func runGenerate(cmd *cobra.Command, fl generateFlags) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	dark, err := render.ParseColor(fl.dark)
	if err != nil {
		return err
	}
	light, err := render.ParseColor(fl.light)
	if err != nil {
		return err
	}
	level, err := qr.ParseLevel(fl.level)
	if err != nil {
		return err
	}
	style, err := render.NewStyle(
		render.WithDark(dark),
		render.WithLight(light),
		render.WithLevel(level),
		render.WithMargin(fl.margin),
		render.WithWidth(fl.width),
		render.WithLogoFraction(fl.logoSize),
		render.WithRounded(fl.rounded),
	)
	if err != nil {
		return err
	}

	req := service.Request{Payload: fl.data, Style: style, LogoURL: fl.logoURL, BaseURL: fl.baseURL}
	if fl.logoFile != "" {
		f, err := os.Open(fl.logoFile)
		if err != nil {
			return fmt.Errorf("open logo: %w", err)
		}
		req.Logo, err = a.fetcher.FromReader(f, filepath.Base(fl.logoFile))
		f.Close()
		if err != nil {
			return err
		}
		req.LogoURL = ""
	}

	res, err := a.svc.Generate(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"imageUrl": res.ImageURL,
		"path":     res.Path,
		"cached":   res.Cached,
	})
}
