// Command databind converts documents between YAML, JSON and XML and
// inspects YAML token streams.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/jetleaf/databind"
	"github.com/jetleaf/databind/yaml"
)

func main() {
	app := &cli.App{
		Name:  "databind",
		Usage: "convert and inspect structured documents",
		Commands: []*cli.Command{
			newConvertCommand(),
			newTokensCommand(),
			newValidateCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "databind: %v\n", err)
		os.Exit(1)
	}
}

func newConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "transcode a document between formats",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Value: "yaml", Usage: "source format (yaml, json, xml)"},
			&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Value: "json", Usage: "target format (yaml, json)"},
			&cli.BoolFlag{Name: "markers", Usage: "wrap YAML output in document markers"},
			&cli.StringFlag{Name: "naming", Usage: "rewrite keys (snake, kebab, camel, upper)"},
		},
		Action: func(c *cli.Context) error {
			data, err := readInput(c)
			if err != nil {
				return err
			}
			mapper := databind.NewMapper()
			if c.Bool("markers") {
				mapper.WithFeatures(databind.DefaultFeatures.With(databind.EmitDocumentMarkers))
			}
			if naming, err := namingByName(c.String("naming")); err != nil {
				return err
			} else if naming != nil {
				mapper.WithNaming(naming)
			}
			out, err := mapper.Convert(data,
				databind.Format(c.String("from")),
				databind.Format(c.String("to")))
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			if len(out) > 0 && out[len(out)-1] != '\n' {
				fmt.Println()
			}
			return nil
		},
	}
}

func newTokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "print the YAML token stream of a document",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			data, err := readInput(c)
			if err != nil {
				return err
			}
			t := yaml.NewTokenizer(string(data))
			defer t.Close()
			kindColor := color.New(color.FgCyan)
			for {
				ok, err := t.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				tok := t.Current()
				kindColor.Printf("%-16s", tok.Kind)
				fmt.Printf(" %s", tok.Pos)
				if tok.Value != "" {
					fmt.Printf("  %q", tok.Value)
				}
				if tok.Kind == yaml.KindScalar {
					fmt.Printf("  (%s)", tok.Style)
				}
				if tok.Anchor != "" {
					fmt.Printf("  &%s", tok.Anchor)
				}
				if tok.Tag != "" {
					fmt.Printf("  %s", tok.Tag)
				}
				fmt.Println()
			}
		},
	}
}

func newValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check that a YAML document tokenizes cleanly",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			data, err := readInput(c)
			if err != nil {
				return err
			}
			t := yaml.NewTokenizer(string(data))
			defer t.Close()
			n := 0
			for {
				ok, err := t.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				n++
			}
			color.New(color.FgGreen).Printf("ok: %d tokens\n", n)
			return nil
		},
	}
}

func readInput(c *cli.Context) ([]byte, error) {
	if name := c.Args().First(); name != "" {
		return os.ReadFile(name)
	}
	return io.ReadAll(os.Stdin)
}

func namingByName(name string) (databind.NamingStrategy, error) {
	switch name {
	case "":
		return nil, nil
	case "snake":
		return databind.NamingSnakeCase, nil
	case "kebab":
		return databind.NamingKebabCase, nil
	case "camel":
		return databind.NamingCamelCase, nil
	case "upper":
		return databind.NamingUpperSnake, nil
	}
	return nil, fmt.Errorf("unknown naming strategy %q", name)
}
