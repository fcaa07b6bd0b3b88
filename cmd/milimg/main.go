// Package main is the milimg command line tool.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/milimg/milimg"
)

func main() {
	var logger golog.Logger

	app := &cli.App{
		Name:  "milimg",
		Usage: "encode raster images to .milimg containers and back",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger = golog.NewDebugLogger("milimg")
			} else {
				logger = zap.NewNop().Sugar()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "encode a PNG/JPEG image into a milimg container",
				ArgsUsage: "<input-image>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "quality",
						Aliases: []string{"q"},
						Value:   milimg.QualityBest,
						Usage:   "AV1 quantizer in [0,63], 0 is best",
					},
					&cli.BoolFlag{
						Name:  "lossless",
						Usage: "store planes losslessly (zstd) instead of AV1",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output path (default: input with .milimg extension)",
					},
				},
				Action: func(c *cli.Context) error {
					in := c.Args().First()
					if in == "" {
						return cli.ShowSubcommandHelp(c)
					}
					src, err := os.ReadFile(in)
					if err != nil {
						return err
					}

					enc := milimg.Encoder{Logger: logger}
					if c.Bool("lossless") {
						enc.Planes = milimg.LosslessCodec{}
					}
					out, err := enc.Encode(c.Context, src, c.Int("quality"))
					if err != nil {
						return err
					}

					dst := c.String("out")
					if dst == "" {
						dst = replaceExt(in, ".milimg")
					}
					if err := os.WriteFile(dst, out, 0o644); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s → %s (%d bytes)\n", in, dst, len(out))
					return nil
				},
			},
			{
				Name:      "decode",
				Usage:     "decode a milimg container to PNG",
				ArgsUsage: "<input.milimg>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "lossless",
						Usage: "expect losslessly stored planes (zstd) instead of AV1",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output path (default: input with .png extension)",
					},
				},
				Action: func(c *cli.Context) error {
					in := c.Args().First()
					if in == "" {
						return cli.ShowSubcommandHelp(c)
					}
					data, err := os.ReadFile(in)
					if err != nil {
						return err
					}

					dec := milimg.Decoder{Logger: logger}
					if c.Bool("lossless") {
						dec.Planes = milimg.LosslessCodec{}
					}
					out, err := dec.Decode(c.Context, data)
					if err != nil {
						return err
					}

					dst := c.String("out")
					if dst == "" {
						dst = replaceExt(in, ".png")
					}
					if err := os.WriteFile(dst, out, 0o644); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s → %s (%d bytes)\n", in, dst, len(out))
					return nil
				},
			},
			{
				Name:      "info",
				Usage:     "print the container header without decoding any plane",
				ArgsUsage: "<input.milimg>",
				Action: func(c *cli.Context) error {
					in := c.Args().First()
					if in == "" {
						return cli.ShowSubcommandHelp(c)
					}
					data, err := os.ReadFile(in)
					if err != nil {
						return err
					}
					h, err := milimg.ParseContainer(data)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "version: %d\nwidth:   %d\nheight:  %d\ncolor:   %d bytes\n",
						h.Version, h.Width, h.Height, len(h.Color))
					if h.Version == milimg.VersionAlpha {
						fmt.Fprintf(c.App.Writer, "alpha:   %d bytes\n", len(h.Alpha))
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
