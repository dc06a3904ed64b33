package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/liquiditick/internal/db"
	"github.com/kailas-cloud/liquiditick/internal/domain"
	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	domtier "github.com/kailas-cloud/liquiditick/internal/domain/tier"
	tierrepo "github.com/kailas-cloud/liquiditick/internal/repository/tier"
	usagerepo "github.com/kailas-cloud/liquiditick/internal/repository/usage"
	usageuc "github.com/kailas-cloud/liquiditick/internal/usecase/usage"
	"github.com/kailas-cloud/liquiditick/internal/version"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	labelStyle = lipgloss.NewStyle().
			Width(14).
			Foreground(lipgloss.Color("243"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1)
)

var errUsage = errors.New("invalid arguments, run usagectl -h")

// seeder is the slice of the opportunity repository used by "seed".
type seeder interface {
	Online() bool
	Insert(ctx context.Context, rows []domopp.Row) error
	PutStats(ctx context.Context, s domopp.Stats) error
	Close() error
}

type app struct {
	store      db.Scanner
	prefix     string
	usage      *usageuc.Service
	records    *usagerepo.Repo
	tiers      *tierrepo.Repo
	openSource func() (seeder, error)
	out        io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "status":
		id, err := oneID(rest)
		if err != nil {
			return err
		}
		return a.status(ctx, id)
	case "reset":
		id, err := oneID(rest)
		if err != nil {
			return err
		}
		a.usage.Tracker(id).ResetUsage(ctx)
		if err := a.tiers.Set(ctx, id, domtier.Free); err != nil {
			return fmt.Errorf("reset tier: %w", err)
		}
		a.done("usage reset for " + id)
		return nil
	case "clear":
		id, err := oneID(rest)
		if err != nil {
			return err
		}
		a.usage.Tracker(id).ClearAllData(ctx)
		a.done("all data cleared for " + id)
		return nil
	case "tier":
		if len(rest) != 2 {
			return errUsage
		}
		t, err := domtier.ParseStrict(rest[1])
		if err != nil {
			return err //nolint:wrapcheck // domain validation error
		}
		if err := a.tiers.Set(ctx, rest[0], t); err != nil {
			return fmt.Errorf("set tier: %w", err)
		}
		a.done(rest[0] + " is now " + t.String())
		return nil
	case "list":
		return a.list(ctx)
	case "seed":
		return a.seed(ctx)
	case "version":
		fmt.Fprintln(a.out, titleStyle.Render("usagectl")+" "+version.String())
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func oneID(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errUsage
	}
	return args[0], nil
}

func (a *app) status(ctx context.Context, id string) error {
	tr := a.usage.Tracker(id)
	d := tr.DebugInfo(ctx)
	t, err := a.tiers.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("read tier: %w", err)
	}

	access := okStyle.Render("yes")
	if !d.CanAccess {
		access = warnStyle.Render("no")
	}
	emails := strings.Join(d.Emails, ", ")
	if emails == "" {
		emails = "-"
	}

	lines := []string{
		titleStyle.Render("Installation " + id),
		row("Today", d.Today),
		row("Record date", d.Current.Date),
		row("Used", fmt.Sprintf("%d / %d", d.Current.Count, d.DailyLimit)),
		row("Remaining", strconv.Itoa(d.Remaining)),
		row("Can access", access),
		row("Tier", t.String()),
		row("Emails", emails),
		row("Storage key", d.StorageKey),
	}
	if p := tr.UpgradePrompt(ctx); p.ShouldShow {
		lines = append(lines, row("Prompt", warnStyle.Render(p.Title)))
	}

	fmt.Fprintln(a.out, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return nil
}

func (a *app) list(ctx context.Context) error {
	prefix := a.prefix
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	usagePrefix := prefix + "usage:"

	keys, err := a.store.Scan(ctx, usagePrefix+"*")
	if err != nil {
		return fmt.Errorf("scan usage keys: %w", err)
	}
	slices.Sort(keys)

	fmt.Fprintln(a.out, titleStyle.Render(fmt.Sprintf("%d installations", len(keys))))
	for _, key := range keys {
		id := strings.TrimPrefix(key, usagePrefix)
		rec, err := a.records.Load(ctx, key)
		if err != nil {
			fmt.Fprintln(a.out, row(id, errorStyle.Render(err.Error())))
			continue
		}
		fmt.Fprintln(a.out, row(id, fmt.Sprintf("%s  %d used", rec.Date, rec.Count)))
	}
	return nil
}

func (a *app) seed(ctx context.Context) error {
	src, err := a.openSource()
	if err != nil {
		return fmt.Errorf("open opportunity database: %w", err)
	}
	defer func() { _ = src.Close() }()

	if !src.Online() {
		return errors.New("source.dsn is not configured")
	}
	rows := domopp.Fallback()
	if err := src.Insert(ctx, rows); err != nil {
		return fmt.Errorf("insert demo rows: %w", err)
	}
	if err := src.PutStats(ctx, domopp.FallbackStats()); err != nil {
		return fmt.Errorf("write platform stats: %w", err)
	}
	a.done(fmt.Sprintf("seeded %d opportunities and platform stats", len(rows)))
	return nil
}

func (a *app) done(msg string) {
	fmt.Fprintln(a.out, okStyle.Render("✓ "+msg))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}
