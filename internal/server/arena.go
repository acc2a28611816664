package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/config"
	"github.com/harrovale/mud/internal/game/actor"
	"github.com/harrovale/mud/internal/game/combat"
	"github.com/harrovale/mud/internal/game/command"
)

// Arena is the interactive fight host. It accepts TCP connections
// speaking a plain line protocol, stages each client as an actor in the
// arena, and funnels every command through one game-loop goroutine so
// the engine never sees concurrent access.
type Arena struct {
	cfg        config.ServerConfig
	roster     *actor.Roster
	manager    *combat.Manager
	dispatcher *command.Dispatcher
	logger     *zap.Logger

	listener net.Listener
	cmds     chan func()
	quit     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// ArenaLocation is where every connected client is staged.
const ArenaLocation = "arena"

// NewArena creates the arena host.
//
// Precondition: roster, manager, dispatcher, and logger must be non-nil.
func NewArena(cfg config.ServerConfig, roster *actor.Roster, manager *combat.Manager, dispatcher *command.Dispatcher, logger *zap.Logger) *Arena {
	return &Arena{
		cfg:        cfg,
		roster:     roster,
		manager:    manager,
		dispatcher: dispatcher,
		logger:     logger.Named("arena"),
		cmds:       make(chan func(), 64),
		quit:       make(chan struct{}),
	}
}

// Start opens the listener, runs the game loop, and accepts connections
// until Stop is called. It blocks for the acceptor's lifetime.
//
// Precondition: The arena must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Arena) Start() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("arena listening", zap.String("addr", listener.Addr().String()))

	a.wg.Add(1)
	go a.gameLoop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
				a.logger.Error("accepting connection", zap.Error(err))
				continue
			}
		}
		a.wg.Add(1)
		go a.handleConn(conn)
	}
}

// Stop closes the listener and waits for the game loop and all client
// goroutines to finish.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Arena) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false

	close(a.quit)
	if a.listener != nil {
		a.listener.Close()
	}
	a.wg.Wait()
	a.logger.Info("arena stopped")
}

// Addr returns the actual listening address, or empty if not listening.
func (a *Arena) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// Submit schedules fn onto the game loop. It is the hook the advisory
// round timer uses; fn is dropped if the arena is shutting down.
func (a *Arena) Submit(fn func()) {
	select {
	case a.cmds <- fn:
	case <-a.quit:
	}
}

// gameLoop runs every engine mutation. Single goroutine, no engine
// locks needed.
func (a *Arena) gameLoop() {
	defer a.wg.Done()
	for {
		select {
		case fn := <-a.cmds:
			fn()
		case <-a.quit:
			return
		}
	}
}

// do runs fn on the game loop and waits for it to complete. Returns
// false if the arena is shutting down.
func (a *Arena) do(fn func()) bool {
	done := make(chan struct{})
	select {
	case a.cmds <- func() { fn(); close(done) }:
	case <-a.quit:
		return false
	}
	select {
	case <-done:
		return true
	case <-a.quit:
		return false
	}
}

func (a *Arena) handleConn(raw net.Conn) {
	defer a.wg.Done()
	defer raw.Close()
	remote := raw.RemoteAddr().String()
	a.logger.Info("client connected", zap.String("remote_addr", remote))

	client := &lineWriter{conn: raw, timeout: a.cfg.WriteTimeout}
	scanner := bufio.NewScanner(raw)

	id, ok := a.stage(client, scanner)
	if !ok {
		return
	}
	a.logger.Info("client staged",
		zap.String("remote_addr", remote),
		zap.String("actor", id),
	)
	defer a.unstage(id)

	client.writeLine(fmt.Sprintf("Welcome to the arena, %s. Type \"help\" for commands.", id))
	for scanner.Scan() {
		line := scanner.Text()
		var out string
		if !a.do(func() { out = a.dispatcher.Handle(id, line) }) {
			return
		}
		if out != "" {
			client.writeLine(out)
		}
	}
}

// stage prompts for a name and adds the client's actor to the roster.
func (a *Arena) stage(client *lineWriter, scanner *bufio.Scanner) (string, bool) {
	for tries := 0; tries < 3; tries++ {
		client.writeLine("Who steps into the arena?")
		if !scanner.Scan() {
			return "", false
		}
		name := firstWord(scanner.Text())
		if name == "" {
			continue
		}

		var err error
		ok := a.do(func() {
			err = a.roster.Add(actor.New(actor.Params{
				ID:         name,
				Name:       name,
				LocationID: ArenaLocation,
				Stats:      map[string]int{"dexterity": 3, "stamina": 3, "strength": 3, "composure": 3, "willpower": 3, "wits": 3},
				Skills:     map[string]int{"brawl": 2, "dodge": 2, "athletics": 2, "survival": 2},
				Sink:       client.writeLine,
			}))
		})
		if !ok {
			return "", false
		}
		if err != nil {
			client.writeLine("That name is taken.")
			continue
		}
		return name, true
	}
	return "", false
}

// unstage removes a disconnected client from any fight and the roster.
func (a *Arena) unstage(id string) {
	a.do(func() {
		if s := a.manager.SessionFor(id); s != nil {
			if err := s.RemoveCombatant(id); err != nil {
				a.logger.Warn("removing disconnected combatant",
					zap.String("actor", id),
					zap.Error(err),
				)
			}
		}
		a.roster.Remove(id)
	})
	a.logger.Info("client unstaged", zap.String("actor", id))
}

func firstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// lineWriter serializes writes to one connection. The engine delivers
// actor messages from the game loop while the client goroutine writes
// command responses, so writes need a lock.
type lineWriter struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
}

func (w *lineWriter) writeLine(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timeout > 0 {
		w.conn.SetWriteDeadline(time.Now().Add(w.timeout))
	}
	fmt.Fprintf(w.conn, "%s\r\n", text)
}
