package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/qrferry/qrferry/config"
	"github.com/qrferry/qrferry/internal/cellcodec"
	"github.com/qrferry/qrferry/internal/ledger"
	"github.com/qrferry/qrferry/internal/pipeline"
	"github.com/qrferry/qrferry/internal/storage"
	"github.com/qrferry/qrferry/pkg/env"
	"github.com/qrferry/qrferry/pkg/logging"
)

func main() {
	env.LoadEnv()
	config.LoadConfig(".")

	app := &cli.App{
		Name:  "qrferry",
		Usage: "Carry binary files across paper: encode files into QR code sequences and back",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
		},
		Before: func(c *cli.Context) error {
			logging.InitLogger(c.Bool("debug"))
			return nil
		},
		Commands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			analyzeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func conversionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "preset", Usage: "named preset: fast, compact or robust"},
		&cli.IntFlag{Name: "chunk-size", Usage: "compressed-stream bytes per chunk", Value: 0},
		&cli.IntFlag{Name: "effort", Usage: "compression effort 0-9, 0 disables", Value: -1},
		&cli.IntFlag{Name: "qr-version", Usage: "QR density hint 1-40", Value: 0},
		&cli.StringFlag{Name: "ec-level", Usage: "error correction hint: L, M, Q or H"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory"},
		&cli.StringFlag{Name: "ledger", Usage: "path to the transfer ledger database"},
	}
}

// resolveConfig layers flags over preset over app config defaults.
func resolveConfig(c *cli.Context) (pipeline.Config, error) {
	cfg := pipeline.Config{
		ChunkSize: config.Config.ChunkSize,
		Effort:    config.Config.Effort,
		QRVersion: config.Config.QRVersion,
		ECLevel:   config.Config.ECLevel,
	}

	if name := c.String("preset"); name != "" {
		preset, err := pipeline.Preset(name)
		if err != nil {
			return pipeline.Config{}, err
		}
		cfg = preset
	}
	if v := c.Int("chunk-size"); v > 0 {
		cfg.ChunkSize = v
	}
	if v := c.Int("effort"); v >= 0 {
		cfg.Effort = v
	}
	if v := c.Int("qr-version"); v > 0 {
		cfg.QRVersion = v
	}
	if v := c.String("ec-level"); v != "" {
		cfg.ECLevel = v
	}
	return cfg, cfg.Validate()
}

func outputDir(c *cli.Context) string {
	if dir := c.String("out"); dir != "" {
		return dir
	}
	return config.Config.OutputDir
}

func openLedger(c *cli.Context) (*ledger.Store, error) {
	path := c.String("ledger")
	if path == "" {
		path = config.Config.LedgerPath
	}
	if path == "" {
		return nil, nil
	}
	return ledger.Open(path)
}

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode a file into a sequence of QR code images",
		ArgsUsage: "<file>",
		Flags:     conversionFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("encode takes exactly one file argument")
			}
			filePath := c.Args().First()

			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			name := filepath.Base(filePath)

			p := pipeline.New(logging.Log)
			buffers, err := p.Encode(data, name, cfg)
			if err != nil {
				return err
			}

			store, err := storage.NewLocalStore(outputDir(c))
			if err != nil {
				return err
			}

			codec := cellcodec.NewQRCodec()
			for i, buf := range buffers {
				img, err := codec.Render(buf, cfg.QRVersion, cfg.ECLevel)
				if err != nil {
					return fmt.Errorf("failed to render chunk %d: %w", i, err)
				}
				imgName := fmt.Sprintf("%s_chunk_%d_of_%d.png", name, i+1, len(buffers))
				path, err := store.Put(imgName, bytes.NewReader(img))
				if err != nil {
					return err
				}
				logging.Log.WithField("image", path).Debug("wrote cell image")
			}

			if ldg, err := openLedger(c); err != nil {
				logging.Log.WithError(err).Warn("ledger unavailable, skipping record")
			} else if ldg != nil {
				defer ldg.Close()
				report := p.Analyze(buffers)
				if len(report) == 1 {
					rec := ledger.NewTransferRecord(report[0].Digest, name, uint64(len(data)), len(buffers))
					if err := ldg.PutTransfer(rec); err != nil {
						logging.Log.WithError(err).Warn("failed to record transfer in ledger")
					}
				}
			}

			fmt.Printf("✅ Encoded %s into %d QR code(s) under %s\n", name, len(buffers), outputDir(c))
			return nil
		},
	}
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Reconstruct original files from scanned QR code images",
		ArgsUsage: "<images...>",
		Flags: append(conversionFlags(),
			&cli.IntFlag{Name: "workers", Usage: "concurrent image scanners", Value: 0},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("decode takes one or more image arguments")
			}

			p := pipeline.New(logging.Log)
			buffers, failures := p.ScanFiles(cellcodec.NewQRCodec(), c.Args().Slice(), c.Int("workers"))
			for _, f := range failures {
				logging.Log.WithField("image", f.Path).WithError(f.Err).Warn("image skipped")
			}

			store, err := storage.NewLocalStore(outputDir(c))
			if err != nil {
				return err
			}

			ldg, err := openLedger(c)
			if err != nil {
				logging.Log.WithError(err).Warn("ledger unavailable, skipping records")
				ldg = nil
			}
			if ldg != nil {
				defer ldg.Close()
			}

			var failed int
			for _, res := range p.Decode(buffers) {
				if ldg != nil {
					if err := ldg.PutDecode(ledger.NewDecodeRecord(res.Digest, res.FileName, res.Err)); err != nil {
						logging.Log.WithError(err).Warn("failed to record decode in ledger")
					}
				}
				if res.Err != nil {
					failed++
					fmt.Printf("❌ %s (%s): %v\n", res.FileName, shortDigest(res.Digest), res.Err)
					continue
				}
				path, err := store.Put(res.FileName, bytes.NewReader(res.Data))
				if err != nil {
					failed++
					fmt.Printf("❌ %s: %v\n", res.FileName, err)
					continue
				}
				fmt.Printf("✅ Reconstructed %s (%d bytes) -> %s\n", res.FileName, len(res.Data), path)
			}

			if failed > 0 {
				return fmt.Errorf("%d transfer(s) failed to decode", failed)
			}
			return nil
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Report per-transfer completeness without reconstructing",
		ArgsUsage: "<images...>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Usage: "concurrent image scanners", Value: 0},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("analyze takes one or more image arguments")
			}

			p := pipeline.New(logging.Log)
			buffers, failures := p.ScanFiles(cellcodec.NewQRCodec(), c.Args().Slice(), c.Int("workers"))

			reports := p.Analyze(buffers)
			if len(reports) == 0 {
				fmt.Println("No recognizable chunks found.")
			}
			for _, rep := range reports {
				status := "complete"
				if !rep.Complete {
					status = fmt.Sprintf("incomplete, missing %v", rep.Missing)
				}
				fmt.Printf("%s (%s): %d/%d chunks, %s\n",
					rep.FileName, shortDigest(rep.Digest), rep.Received, rep.Total, status)
			}
			if len(failures) > 0 {
				fmt.Printf("⚠️  %d image(s) could not be scanned\n", len(failures))
			}
			return nil
		},
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
