// Command authflow-demo walks the full client auth flow against an
// in-process identity provider: identifier discovery, phone code dispatch,
// resend countdown, code confirmation, session persistence, sign-out.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/discovery"
	"github.com/MrEthical07/goAuthClient/otp"
	"github.com/MrEthical07/goAuthClient/storage"
)

type envConfig struct {
	StatePath     string `env:"AUTHFLOW_STATE_PATH" envDefault:"authflow-state.json"`
	SQLitePath    string `env:"AUTHFLOW_SQLITE_PATH" envDefault:"authflow-state.db"`
	CountryPrefix string `env:"AUTHFLOW_COUNTRY_PREFIX" envDefault:"+91"`
}

type cli struct {
	Phone    string `help:"Phone number to verify." default:"9876543210"`
	Code     string `help:"Verification code to submit." default:"482913"`
	Backend  string `help:"Session storage backend." enum:"memory,file,sqlite" default:"memory"`
	Cooldown int    `help:"Resend cooldown in seconds." default:"3"`
	Verbose  bool   `help:"Enable debug logging."`
}

// demoProvider is a deterministic in-process identity backend. It accepts
// exactly one code per challenge.
type demoProvider struct {
	log  zerolog.Logger
	code string
}

func (p *demoProvider) StartPhoneVerification(_ context.Context, phone string, timeout time.Duration) (goAuthClient.DispatchResult, error) {
	p.log.Info().Str("phone", phone).Dur("timeout", timeout).Msg("dispatching verification code")
	return goAuthClient.DispatchResult{ChallengeID: "demo-challenge", ResendToken: "demo-resend"}, nil
}

func (p *demoProvider) ResendPhoneVerification(_ context.Context, phone, resendToken string) (goAuthClient.DispatchResult, error) {
	p.log.Info().Str("phone", phone).Msg("re-dispatching verification code")
	return goAuthClient.DispatchResult{ChallengeID: "demo-challenge", ResendToken: resendToken}, nil
}

func (p *demoProvider) ConfirmPhoneCode(_ context.Context, challengeID, code string) (goAuthClient.UserProfile, error) {
	if code != p.code {
		return goAuthClient.UserProfile{}, goAuthClient.ErrInvalidCredential
	}
	return goAuthClient.UserProfile{UserID: "demo-user", DisplayName: "Demo User"}, nil
}

func (p *demoProvider) SignInWithPassword(_ context.Context, email, password string) (goAuthClient.UserProfile, error) {
	return goAuthClient.UserProfile{UserID: "demo-user", Email: email}, nil
}

func (p *demoProvider) CreateAccount(_ context.Context, email, password string) (goAuthClient.UserProfile, error) {
	return goAuthClient.UserProfile{UserID: "demo-user", Email: email}, nil
}

func (p *demoProvider) SignInFederated(_ context.Context, credential goAuthClient.FederatedCredential) (goAuthClient.UserProfile, error) {
	return goAuthClient.UserProfile{UserID: "demo-user"}, nil
}

func (p *demoProvider) SignOut(context.Context) error { return nil }

// demoSource pretends to be the platform identifier source.
type demoSource struct {
	phone string
}

func (s *demoSource) ListAccountEmails(context.Context) ([]string, error) {
	return []string{"demo@example.org"}, nil
}

func (s *demoSource) DeviceLine1Number(context.Context) (string, error) {
	return s.phone, nil
}

func (s *demoSource) ActiveLineNumbers(context.Context) ([]string, error) {
	return nil, nil
}

func openStorage(backend string, ec envConfig) (storage.KV, func(), error) {
	switch backend {
	case "file":
		kv, err := storage.OpenFileKV(ec.StatePath)
		return kv, func() {}, err
	case "sqlite":
		kv, err := storage.OpenSQLiteKV(ec.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	default:
		return storage.NewMemoryKV(), func() {}, nil
	}
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("authflow-demo"),
		kong.Description("Walk the device auth flow end to end against an in-process provider."),
	)

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		fmt.Fprintln(os.Stderr, "env:", err)
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if args.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	kv, closeKV, err := openStorage(args.Backend, ec)
	if err != nil {
		log.Fatal().Err(err).Str("backend", args.Backend).Msg("open storage")
	}
	defer closeKV()

	cfg := goAuthClient.Config{}
	cfg = defaultedConfig(cfg, ec, args)

	orchestrator, err := goAuthClient.New().
		WithConfig(cfg).
		WithProvider(&demoProvider{log: log, code: args.Code}).
		WithStorage(kv).
		WithDiscoverySource(&demoSource{phone: args.Phone}, discovery.AllowAll).
		WithAuditSink(goAuthClient.NewJSONWriterSink(os.Stdout)).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}
	defer orchestrator.Close()

	ctx := goAuthClient.WithDeviceID(context.Background(), "demo-device")
	ctx = goAuthClient.WithLocale(ctx, "en-IN")

	if orchestrator.IsSignedIn() {
		log.Info().Str("as", orchestrator.DisplayIdentifier()).Msg("restored persisted session, signing out first")
		if err := orchestrator.SignOut(ctx); err != nil {
			log.Fatal().Err(err).Msg("sign out")
		}
	}

	ids := orchestrator.DiscoverIdentifiers(ctx)
	log.Info().
		Strs("phones", ids.Phones).
		Strs("emails", ids.Emails).
		Msg("discovered identifiers")

	phone := args.Phone
	if ids.HasPhone() {
		phone = ids.PrimaryPhone
	}

	challenge, err := orchestrator.StartPhoneVerification(ctx, phone)
	if err != nil {
		log.Fatal().Err(err).Msg("start verification")
	}
	log.Info().Str("challenge", challenge.ID).Str("state", challenge.State.String()).Msg("code dispatched")

	for event := range orchestrator.ResendCountdown() {
		if event.Finished {
			log.Info().Msg("resend available")
			break
		}
		log.Debug().Str("clock", otp.FormatClock(int64(event.SecondsRemaining))).Msg("resend locked")
	}

	start := time.Now()
	if _, err := orchestrator.CompleteVerification(ctx, args.Code); err != nil {
		if errors.Is(err, goAuthClient.ErrInvalidCredential) {
			log.Fatal().Msg("code rejected by provider")
		}
		log.Fatal().Err(err).Msg("complete verification")
	}

	session := orchestrator.Session()
	log.Info().
		Str("user", session.UserID).
		Str("display", session.DisplayIdentifier()).
		Dur("took", time.Since(start)).
		Msg("signed in")

	snapshot := orchestrator.MetricsSnapshot()
	log.Info().
		Uint64("started", snapshot.Counters[goAuthClient.MetricVerificationStarted]).
		Uint64("completed", snapshot.Counters[goAuthClient.MetricVerificationCompleted]).
		Uint64("sessions", snapshot.Counters[goAuthClient.MetricSessionCreated]).
		Msg("metrics")

	if err := orchestrator.SignOut(ctx); err != nil {
		log.Fatal().Err(err).Msg("sign out")
	}
	log.Info().Msg("signed out, session cleared")
}

func defaultedConfig(cfg goAuthClient.Config, ec envConfig, args cli) goAuthClient.Config {
	cfg.Verification.ChallengeTTL = 2 * time.Minute
	cfg.Verification.ResendCooldown = time.Duration(args.Cooldown) * time.Second
	cfg.Verification.CodeLength = 6
	cfg.Verification.AutoComplete = true
	cfg.Discovery.Enabled = true
	cfg.Discovery.DefaultCountryPrefix = ec.CountryPrefix
	cfg.Discovery.LocalCountryDigits = strings.TrimPrefix(ec.CountryPrefix, "+")
	cfg.Session.Namespace = "authflow-demo"
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	cfg.Audit.DropIfFull = true
	cfg.Metrics.Enabled = true
	return cfg
}
