package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"relayapi/src/client"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Relay CMD"
	app.Usage = "The TREA/FWEA relay command line interface"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url",
			Usage:  "relay base URL",
			Value:  "http://127.0.0.1:8080",
			EnvVar: "TFA_URL",
		},
		cli.StringFlag{
			Name:   "token",
			Usage:  "API token",
			EnvVar: "TFA_TOKEN",
		},
	}

	app.Commands = []cli.Command{
		publishCMD,
		tailCMD,
		healthCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	publishCMD = cli.Command{
		Name:        "publish",
		Usage:       "publish one event from a JSON file (or stdin with -)",
		Action:      publishAction,
		ArgsUsage:   "<file.json | ->",
		Flags:       []cli.Flag{},
		Description: `Send one event object to the relay and print the assigned id`,
	}
	tailCMD = cli.Command{
		Name:      "tail",
		Usage:     "follow the event stream",
		Action:    tailAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.Int64Flag{Name: "since", Usage: "legacy id cursor to start from"},
			cli.StringFlag{Name: "trader-key", Usage: "use the keyed cursor for this trader key"},
			cli.Int64Flag{Name: "since-seq", Usage: "seq cursor (with --trader-key)"},
			cli.DurationFlag{Name: "interval", Usage: "poll interval", Value: 2 * time.Second},
		},
		Description: `Poll the NDJSON stream, advancing the cursor, and print each event`,
	}
	healthCMD = cli.Command{
		Name:        "health",
		Usage:       "print relay health",
		Action:      healthAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Fetch /api/v1/health and print it`,
	}
)

func newClient(c *cli.Context) *client.Client {
	return client.New(c.GlobalString("url"), c.GlobalString("token"))
}

func publishAction(c *cli.Context) error {
	logrus.Info("Starting publish CMD")

	if c.NArg() < 1 {
		return fmt.Errorf("usage: publish <file.json | ->")
	}

	var raw []byte
	var err error
	if name := c.Args().First(); name == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return err
	}

	var event map[string]interface{}
	if err := json.Unmarshal(raw, &event); err != nil {
		return fmt.Errorf("input is not a JSON object: %w", err)
	}

	id, err := newClient(c).Publish(context.Background(), event)
	if err != nil {
		logrus.WithError(err).Error("Publish failed")
		return err
	}

	fmt.Println(id)
	return nil
}

func tailAction(c *cli.Context) error {
	logrus.Info("Starting tail CMD")

	api := newClient(c)
	traderKey := c.String("trader-key")
	sinceSeq := c.Int64("since-seq")
	since := c.Int64("since")
	interval := c.Duration("interval")

	out := json.NewEncoder(os.Stdout)
	for {
		var err error
		if traderKey != "" {
			events, e := api.StreamSeq(context.Background(), traderKey, sinceSeq)
			err = e
			for _, evt := range events {
				if encErr := out.Encode(evt); encErr != nil {
					return encErr
				}
				if evt.Seq > sinceSeq {
					sinceSeq = evt.Seq
				}
			}
		} else {
			events, e := api.Stream(context.Background(), since)
			err = e
			for _, evt := range events {
				if encErr := out.Encode(evt); encErr != nil {
					return encErr
				}
				if evt.ID > since {
					since = evt.ID
				}
			}
		}
		if err != nil {
			logrus.WithError(err).Error("Stream poll failed")
			return err
		}

		time.Sleep(interval)
	}
}

func healthAction(c *cli.Context) error {
	h, err := newClient(c).Health(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Health check failed")
		return err
	}

	b, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
