package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/russelltsherman/node-tweetawatt/config"
	"github.com/russelltsherman/node-tweetawatt/device/radio"
	"github.com/russelltsherman/node-tweetawatt/httpserver"
	"github.com/russelltsherman/node-tweetawatt/logging"
	"github.com/russelltsherman/node-tweetawatt/metrics"
	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/sink"
	"github.com/russelltsherman/node-tweetawatt/ui/footer"
	"github.com/russelltsherman/node-tweetawatt/ui/header"
	"github.com/russelltsherman/node-tweetawatt/ui/msgbar"
	"github.com/russelltsherman/node-tweetawatt/ui/readings"
	"github.com/russelltsherman/node-tweetawatt/ui/sidebar"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

// --- Constants for Layout ---
const (
	sidebarWidth = 20
	msgbarHeight = 7
)

var errStreamClosed = errors.New("radio stream closed")

// model holds the application's state
type model struct {
	width  int
	height int

	headerModel   header.Model
	readingsModel readings.Model
	msgbarModel   msgbar.Model
	footerModel   footer.Model
	sidebarModel  sidebar.Model

	events <-chan sink.Event

	err error
}

// initialModel creates the starting model
func initialModel(conf config.Config, events <-chan sink.Event) model {
	return model{
		width:         80,
		height:        24,
		headerModel:   header.New(conf.Interface.Device),
		readingsModel: readings.New(),
		msgbarModel:   msgbar.New(conf.UI.MaxEvents),
		footerModel:   footer.New(),
		sidebarModel:  sidebar.New(),
		events:        events,
	}
}

// listenForEvents is a tea.Cmd that waits for the next decoded frame or error
func (m model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return errStreamClosed
		}
		return ev
	}
}

func (m model) Init() tea.Cmd {
	return m.listenForEvents()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
		return m, nil
	}

	var (
		headerCmd   tea.Cmd
		readingsCmd tea.Cmd
		msgbarCmd   tea.Cmd
		footerCmd   tea.Cmd
		sidebarCmd  tea.Cmd
		cmds        []tea.Cmd
	)

	switch msg := msg.(type) {
	case sink.Event:
		switch {
		case msg.Err != nil:
			m.footerModel.CountError()
		case msg.Frame != nil:
			source := ""
			if s, ok := msg.Frame.(*packet.AnalogSample); ok {
				m.readingsModel.Record(s, msg.At)
				m.sidebarModel.AddReport(s.Source, s.RSSI)
				m.headerModel.SetSensors(m.readingsModel.Sensors())
				source = fmt.Sprintf("%04X", s.Source)
			}
			m.footerModel.CountFrame(source)
		}
		m.msgbarModel, msgbarCmd = m.msgbarModel.Update(msg)
		cmds = append(cmds, msgbarCmd, m.listenForEvents())

	case error:
		// The radio went away; keep the screen up until a key is pressed
		m.err = msg
		m.headerModel.SetDown()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 1
		footerHeight := 1
		mainHeight := m.height - headerHeight - msgbarHeight - footerHeight
		readingsWidth := m.width - sidebarWidth
		if mainHeight < 1 {
			mainHeight = 1
		}

		headerMsg := tea.WindowSizeMsg{Width: m.width, Height: headerHeight}
		m.headerModel, headerCmd = m.headerModel.Update(headerMsg)

		sidebarMsg := tea.WindowSizeMsg{Width: sidebarWidth, Height: mainHeight}
		m.sidebarModel, sidebarCmd = m.sidebarModel.Update(sidebarMsg)

		readingsMsg := tea.WindowSizeMsg{Width: readingsWidth, Height: mainHeight}
		m.readingsModel, readingsCmd = m.readingsModel.Update(readingsMsg)

		msgbarMsg := tea.WindowSizeMsg{Width: m.width, Height: msgbarHeight}
		m.msgbarModel, msgbarCmd = m.msgbarModel.Update(msgbarMsg)

		footerMsg := tea.WindowSizeMsg{Width: m.width, Height: footerHeight}
		m.footerModel, footerCmd = m.footerModel.Update(footerMsg)

		cmds = append(cmds, headerCmd, sidebarCmd, readingsCmd, msgbarCmd, footerCmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Border(lipgloss.DoubleBorder(), true).
			BorderForeground(lipgloss.Color("9")).
			Padding(1).
			Align(lipgloss.Center, lipgloss.Center)
		return errorStyle.Render(
			"Error:\n\n" + m.err.Error() +
				"\n\nPress any key to quit.",
		)
	}

	middleStack := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebarModel.View(),
		m.readingsModel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerModel.View(),
		middleStack,
		m.msgbarModel.View(),
		m.footerModel.View(),
	)
}

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath, "path to the TOML configuration file")
	headless := pflag.Bool("headless", false, "log frames instead of starting the terminal UI")
	pflag.Parse()

	if err := run(*configPath, *headless); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, headless bool) error {
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	useUI := conf.UI.Enabled && !headless

	// The TUI owns stdout, so logs only go to the file while it runs
	logger, err := logging.InitLogger(conf.Logging, useUI)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	framer := xbee.NewFramer(
		xbee.WithChecksumVerification(conf.Framer.VerifyChecksum),
		xbee.WithMaxPayload(conf.Framer.MaxPayload),
	)
	client, err := radio.Connect(conf.Interface, framer, logger, appMetrics)
	if err != nil {
		return fmt.Errorf("failed to connect to radio: %w", err)
	}
	defer client.Close()

	latest := sink.NewLatest(appMetrics)
	sinks := sink.Multi{latest, sink.NewLog(logger), sink.NewMetrics(appMetrics)}

	if conf.Redis.Enabled {
		rdb, err := sink.NewRedisClient(ctx, conf.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		sinks = append(sinks, sink.NewRedis(rdb, conf.Redis, client.StreamID(), logger))
		logger.Info("publishing frames to redis", zap.String("addr", conf.Redis.Addr), zap.String("prefix", conf.Redis.ChannelPrefix))
	}

	g, ctx := errgroup.WithContext(ctx)

	var events chan sink.Event
	if useUI {
		events = make(chan sink.Event)
		sinks = append(sinks, sink.NewChan(events, ctx.Done()))
	}

	if conf.HTTP.Enabled {
		srv := httpserver.New(conf.HTTP, metrics.Handler(reg), latest, client.Connected)
		g.Go(func() error {
			logger.Info("http server listening", zap.String("addr", conf.HTTP.Addr))
			return srv.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		if events != nil {
			defer close(events)
		}
		err := client.Start(ctx, sinks)

		st := client.Stats()
		logger.Info("radio loop stopped",
			zap.Uint64("frames", st.Frames),
			zap.Uint64("decode_errors", st.DecodeErrors),
			zap.Uint64("checksum_failures", st.ChecksumFailures),
			zap.Uint64("resyncs", st.Resyncs),
			zap.Uint64("oversized", st.Oversized),
		)
		if !useUI {
			cancel()
		}
		return err
	})

	if useUI {
		g.Go(func() error {
			defer cancel()
			p := tea.NewProgram(initialModel(conf, events), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("terminal UI: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
