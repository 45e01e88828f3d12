package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/secretops/attrcrypt/cryptoutils"
	"github.com/secretops/attrcrypt/engine"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "attrkeys",
		Usage: "Manage node key pairs for attribute encryption",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a node key pair and write <name>.key and <name>.pub",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Required: true,
						Usage:    "base name for the key files",
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Value: ".",
						Usage: "directory to write the key files to",
					},
				},
				Action: runGenerate,
			},
			{
				Name:      "split",
				Usage:     "Split a node private key into Shamir shares, printed base64-encoded",
				ArgsUsage: "<key-file>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "shares",
						Value: 5,
						Usage: "total number of shares to produce",
					},
					&cli.IntFlag{
						Name:  "threshold",
						Value: 3,
						Usage: "number of shares needed to restore the key",
					},
				},
				Action: runSplit,
			},
			{
				Name:      "restore",
				Usage:     "Restore a node private key from base64-encoded shares",
				ArgsUsage: "<share> <share> [share ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Required: true,
						Usage:    "file to write the restored key to",
					},
				},
				Action: runRestore,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runGenerate(cCtx *cli.Context) error {
	name := cCtx.String("name")
	outDir := cCtx.String("out-dir")

	privPEM, pubPEM, err := cryptoutils.GenerateNodeKeypair()
	if err != nil {
		return err
	}

	keyPath := filepath.Join(outDir, name+".key")
	if err := os.WriteFile(keyPath, privPEM, 0600); err != nil {
		return fmt.Errorf("could not write private key: %w", err)
	}

	pubPath := filepath.Join(outDir, name+".pub")
	if err := os.WriteFile(pubPath, pubPEM, 0644); err != nil {
		return fmt.Errorf("could not write public key: %w", err)
	}

	fmt.Printf("wrote %s and %s\n", keyPath, pubPath)
	return nil
}

func runSplit(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected one argument: the key file")
	}

	key, err := os.ReadFile(cCtx.Args().Get(0))
	if err != nil {
		return fmt.Errorf("could not read key file: %w", err)
	}

	shares, err := engine.SplitNodeKey(key, cCtx.Int("shares"), cCtx.Int("threshold"))
	if err != nil {
		return err
	}

	for i, share := range shares {
		fmt.Printf("share %d: %s\n", i+1, base64.StdEncoding.EncodeToString(share))
	}
	return nil
}

func runRestore(cCtx *cli.Context) error {
	if cCtx.NArg() < 2 {
		return fmt.Errorf("expected at least two shares")
	}

	shares := make([][]byte, 0, cCtx.NArg())
	for _, arg := range cCtx.Args().Slice() {
		share, err := base64.StdEncoding.DecodeString(arg)
		if err != nil {
			return fmt.Errorf("invalid share encoding: %w", err)
		}
		shares = append(shares, share)
	}

	key, err := engine.RestoreNodeKey(shares)
	if err != nil {
		return err
	}

	out := cCtx.String("out")
	if err := os.WriteFile(out, key, 0600); err != nil {
		return fmt.Errorf("could not write restored key: %w", err)
	}

	fmt.Printf("wrote %s\n", out)
	return nil
}
