package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/secretops/attrcrypt/api/attrhandler"
	"github.com/secretops/attrcrypt/cmd/flags"
	"github.com/secretops/attrcrypt/interfaces"
	"github.com/urfave/cli/v2"
)

var serverURLFlag = &cli.StringFlag{
	Name:  "server-url",
	Value: "http://127.0.0.1:8080",
	Usage: "base URL of the attribute server",
}

func main() {
	app := &cli.App{
		Name:  "attrctl",
		Usage: "Manage encrypted attributes on an attribute server",
		Flags: []cli.Flag{
			serverURLFlag,
			flags.LogJsonFlag,
			flags.LogDebugFlag,
			flags.LogUidFlag,
			flags.LogServiceFlagFn("attrctl"),
		},
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "Read an attribute and print its decrypted value",
				ArgsUsage: "<path>",
				Action:    runRead,
			},
			{
				Name:      "write",
				Usage:     "Write an attribute; the value is parsed as JSON, falling back to a plain string",
				ArgsUsage: "<path> <value>",
				Action:    runWrite,
			},
			{
				Name:      "read-remote",
				Usage:     "Read another node's attribute",
				ArgsUsage: "<node> <path>",
				Action:    runReadRemote,
			},
			{
				Name:   "enabled",
				Usage:  "Show the server's enablement state",
				Action: runEnabled,
			},
			{
				Name:      "set-enabled",
				Usage:     "Override the enablement policy (true/false) or reset it",
				ArgsUsage: "<true|false|reset>",
				Action:    runSetEnabled,
			},
			{
				Name:      "scope",
				Usage:     "Configure the search scope for encrypted writes",
				ArgsUsage: "<scope expression>",
				Action:    runScope,
			},
			{
				Name:      "register-node",
				Usage:     "Register a node and its public key in the server's directory",
				ArgsUsage: "<node> <pubkey-file> [key=value ...]",
				Action:    runRegisterNode,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func client(cCtx *cli.Context) *attrhandler.Client {
	return attrhandler.NewClient(cCtx.String(serverURLFlag.Name), nil)
}

func printValue(value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func runRead(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected exactly one argument: the attribute path")
	}
	path, err := interfaces.ParseAttributePath(cCtx.Args().Get(0))
	if err != nil {
		return err
	}

	value, err := client(cCtx).ReadAttribute(cCtx.Context, path)
	if err != nil {
		return err
	}
	return printValue(value)
}

func runWrite(cCtx *cli.Context) error {
	if cCtx.NArg() != 2 {
		return fmt.Errorf("expected two arguments: path and value")
	}
	path, err := interfaces.ParseAttributePath(cCtx.Args().Get(0))
	if err != nil {
		return err
	}

	raw := cCtx.Args().Get(1)
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		// Not valid JSON, treat it as a plain string
		value = raw
	}

	result, err := client(cCtx).WriteAttribute(cCtx.Context, path, value)
	if err != nil {
		return err
	}
	return printValue(result)
}

func runReadRemote(cCtx *cli.Context) error {
	if cCtx.NArg() != 2 {
		return fmt.Errorf("expected two arguments: node and path")
	}
	path, err := interfaces.ParseAttributePath(cCtx.Args().Get(1))
	if err != nil {
		return err
	}

	value, err := client(cCtx).ReadRemoteAttribute(cCtx.Context, interfaces.NodeID(cCtx.Args().Get(0)), path)
	if err != nil {
		return err
	}
	return printValue(value)
}

func runEnabled(cCtx *cli.Context) error {
	state, err := client(cCtx).Enabled(cCtx.Context)
	if err != nil {
		return err
	}
	return printValue(state)
}

func runSetEnabled(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected one argument: true, false, or reset")
	}

	c := client(cCtx)
	switch cCtx.Args().Get(0) {
	case "true":
		return c.SetEnabled(cCtx.Context, true)
	case "false":
		return c.SetEnabled(cCtx.Context, false)
	case "reset":
		return c.ResetEnabled(cCtx.Context)
	default:
		return fmt.Errorf("invalid argument %q, expected true, false, or reset", cCtx.Args().Get(0))
	}
}

func runScope(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected one argument: the scope expression")
	}
	return client(cCtx).SetScope(cCtx.Context, interfaces.SearchScope(cCtx.Args().Get(0)))
}

func runRegisterNode(cCtx *cli.Context) error {
	if cCtx.NArg() < 2 {
		return fmt.Errorf("expected at least two arguments: node and pubkey file")
	}

	publicKey, err := os.ReadFile(cCtx.Args().Get(1))
	if err != nil {
		return fmt.Errorf("could not read public key file: %w", err)
	}

	tags := make(map[string]string)
	for _, arg := range cCtx.Args().Slice()[2:] {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid tag %q, expected key=value", arg)
		}
		tags[key] = value
	}

	return client(cCtx).RegisterNode(cCtx.Context, interfaces.NodeID(cCtx.Args().Get(0)), publicKey, tags)
}
