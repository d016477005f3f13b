// Command cardioctl talks to a running cardiod: it requests predictions over
// gRPC, prints the model schema, mints development tokens and tails the
// prediction event stream.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bibbank/cardiorisk/internal/client"
	kafkainfra "github.com/bibbank/cardiorisk/internal/infrastructure/kafka"
	"github.com/bibbank/cardiorisk/pkg/auth"
	"github.com/bibbank/cardiorisk/pkg/kafka"
	"github.com/bibbank/cardiorisk/pkg/observability"
	"github.com/bibbank/cardiorisk/pkg/tlsutil"
)

const usage = `usage: cardioctl <command> [flags]

commands:
  predict   request a prediction, prompting for each field
  schema    print the model status and form fields
  token     mint a development JWT
  events    print prediction events as they are published
  certs     write a development CA and server certificate
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, surveyPrompter{}); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return
		case errors.Is(err, errAborted):
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "cardioctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, prompter Prompter) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "predict":
		return runPredict(ctx, rest, out, prompter)
	case "schema":
		return runSchema(ctx, rest, out)
	case "token":
		return runToken(rest, out)
	case "events":
		return runEvents(ctx, rest, out)
	case "certs":
		return runCerts(rest, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// connFlags are shared by the commands that dial cardiod.
type connFlags struct {
	addr     string
	token    string
	tls      bool
	caFile   string
	insecure bool
	timeout  time.Duration
	verbose  bool
}

func (c *connFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", envOr("CARDIO_ADDR", "localhost:9090"), "cardiod gRPC address")
	fs.StringVar(&c.token, "token", os.Getenv("CARDIO_TOKEN"), "bearer token")
	fs.BoolVar(&c.tls, "tls", false, "use TLS")
	fs.StringVar(&c.caFile, "ca", "", "CA bundle for TLS")
	fs.BoolVar(&c.insecure, "insecure-skip-verify", false, "skip TLS certificate verification")
	fs.DurationVar(&c.timeout, "timeout", 10*time.Second, "request timeout")
	fs.BoolVar(&c.verbose, "v", false, "log client activity to stderr")
}

func (c *connFlags) dial() (*client.Client, error) {
	logger := observability.Discard()
	if c.verbose {
		logger = observability.InitLogger(observability.LogConfig{Level: "debug", Format: "text", Service: "cardioctl", Output: os.Stderr})
	}
	return client.Dial(client.Config{
		Address:            c.addr,
		Token:              c.token,
		TLS:                c.tls,
		CAFile:             c.caFile,
		InsecureSkipVerify: c.insecure,
	}, logger)
}

// assignments collects repeated -set name=value flags.
type assignments map[string]string

func (a assignments) String() string {
	parts := make([]string, 0, len(a))
	for k, v := range a {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (a assignments) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	a[name] = strings.TrimSpace(value)
	return nil
}

func runPredict(ctx context.Context, args []string, out io.Writer, prompter Prompter) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	var conn connFlags
	conn.register(fs)
	set := assignments{}
	fs.Var(set, "set", "field value as name=value; repeatable")
	useDefaults := fs.Bool("defaults", false, "use form defaults for fields not given with -set instead of prompting")
	asJSON := fs.Bool("json", false, "print the full response as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := conn.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	callCtx, cancel := context.WithTimeout(ctx, conn.timeout)
	defer cancel()

	schema, err := c.GetSchema(callCtx)
	if err != nil {
		return fmt.Errorf("get schema: %w", err)
	}
	if !schema.Available {
		return fmt.Errorf("model unavailable: %s", schema.LoadError)
	}

	var inputs map[string]any
	if len(set) > 0 || *useDefaults {
		inputs, err = assignedInputs(set, schema.Fields)
	} else {
		inputs, err = collectInputs(ctx, prompter, schema.Fields)
	}
	if err != nil {
		return err
	}

	// Prompting may take longer than the request timeout.
	predictCtx, predictCancel := context.WithTimeout(ctx, conn.timeout)
	defer predictCancel()

	resp, err := c.Predict(predictCtx, inputs)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintln(out, resp.Display)
	fmt.Fprintln(out, resp.Message)
	return nil
}

func runSchema(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	var conn connFlags
	conn.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := conn.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	callCtx, cancel := context.WithTimeout(ctx, conn.timeout)
	defer cancel()

	schema, err := c.GetSchema(callCtx)
	if err != nil {
		return fmt.Errorf("get schema: %w", err)
	}

	if schema.Available {
		fmt.Fprintf(out, "model %s (policy %s)\n", schema.ModelVersion, schema.Policy)
		fmt.Fprintf(out, "features: %s\n", strings.Join(schema.Features, ", "))
	} else {
		fmt.Fprintf(out, "model unavailable: %s\n", schema.LoadError)
	}
	for _, f := range schema.Fields {
		if len(f.Options) > 0 {
			opts := make([]string, len(f.Options))
			for i, o := range f.Options {
				opts[i] = o.Value
			}
			fmt.Fprintf(out, "  %-9s %s [%s] default %s\n", f.Name, f.Label, strings.Join(opts, "|"), f.Default)
			continue
		}
		fmt.Fprintf(out, "  %-9s %s [%v..%v step %v] default %s\n", f.Name, f.Label, f.Min, f.Max, f.Step, f.Default)
	}
	return nil
}

func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	secret := fs.String("secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	issuer := fs.String("issuer", envOr("JWT_ISSUER", "cardiorisk"), "token issuer")
	subject := fs.String("subject", "dev", "token subject")
	roles := fs.String("roles", auth.RoleClinician, "comma-separated roles")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: *secret, Issuer: *issuer, Expiration: *ttl})
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(*subject, splitList(*roles))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func runEvents(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	brokers := fs.String("brokers", envOr("KAFKA_BROKERS", "localhost:9092"), "comma-separated broker addresses")
	topic := fs.String("topic", envOr("KAFKA_TOPIC", "cardio.prediction.completed"), "topic to read")
	group := fs.String("group", "", "consumer group; empty reads new events without committing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	handler := func(_ context.Context, msg kafka.Message) error {
		env, err := kafkainfra.DecodeEnvelope(msg)
		if err != nil {
			return err
		}
		return enc.Encode(env)
	}

	logger := observability.InitLogger(observability.LogConfig{Level: "info", Format: "text", Service: "cardioctl", Output: os.Stderr})
	consumer, err := kafka.NewConsumer(kafka.Config{
		Brokers:       splitList(*brokers),
		ClientID:      "cardioctl",
		ConsumerGroup: *group,
	}, *topic, handler, logger.With(slog.String("component", "events")))
	if err != nil {
		return err
	}
	defer consumer.Close()

	return consumer.Start(ctx)
}

func runCerts(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certs", flag.ContinueOnError)
	dir := fs.String("out", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated hosts for the server certificate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	certs, err := tlsutil.GenerateDevCertificates(splitList(*hosts), *dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "GRPC_TLS_CERT_FILE=%s\nGRPC_TLS_KEY_FILE=%s\n# client: -tls -ca %s\n", certs.CertFile, certs.KeyFile, certs.CAFile)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
