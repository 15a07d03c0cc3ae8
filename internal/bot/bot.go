package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"remindbot/internal/config"
	"remindbot/internal/conversation"
	"remindbot/internal/db"
	"remindbot/internal/reminder"
	"remindbot/internal/settings"

	"github.com/bwmarrin/discordgo"
)

const handlerTimeout = 10 * time.Second

type Bot struct {
	config      *config.Config
	store       db.Store
	machine     *conversation.Machine
	scheduler   *reminder.Scheduler
	limiter     *userLimiter
	session     *discordgo.Session
	registered  []*discordgo.ApplicationCommand
	shutdownCh  chan struct{} // closed once shutdown has finished
	shutdownErr error
	isShutdown  bool
	mu          sync.Mutex
	wg          sync.WaitGroup
	now         func() time.Time
}

func New(cfg *config.Config, store db.Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	log.Printf("Bot intents: %d", session.Identify.Intents)

	b := &Bot{
		config:     cfg,
		store:      store,
		session:    session,
		limiter:    newUserLimiter(cfg.Limits.EventsPerSecond, cfg.Limits.Burst),
		shutdownCh: make(chan struct{}),
		now:        time.Now,
	}

	b.scheduler = reminder.NewScheduler(reminder.NotifierFunc(b.Notify))
	manager := settings.NewManager(store, cfg.Defaults.Timezone, cfg.Defaults.Language)
	b.machine = conversation.New(store, manager, b.scheduler)

	return b, nil
}

// registerCommands registers the slash commands globally so they work in
// direct messages.
func (b *Bot) registerCommands() error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := b.registerCommandsOnce()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("Attempt %d to register commands failed: %v", i+1, err)
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return fmt.Errorf("failed to register commands after %d attempts: %v", maxRetries, lastErr)
}

func (b *Bot) registerCommandsOnce() error {
	log.Println(formatLogMessage("", "Registering commands", "BOT", ""))

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.appID(), "", commands)
	if err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	for _, cmd := range registered {
		log.Println(formatLogMessage("", fmt.Sprintf("%s: Registered command", cmd.Name), "BOT", ""))
	}

	b.mu.Lock()
	b.registered = registered
	b.mu.Unlock()
	return nil
}

// appID falls back to the bot user when no client ID is configured.
func (b *Bot) appID() string {
	if b.config.Discord.ClientID != "" {
		return b.config.Discord.ClientID
	}
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

func (b *Bot) Start(ctx context.Context) error {
	log.Println("Starting reminder bot...")

	// Keep trying to connect until successful
	for {
		log.Println("Testing Discord API connection...")
		if _, err := b.session.User("@me"); err != nil {
			log.Printf("Failed to connect to Discord API: %v. Retrying in 5 seconds...", err)
			if !sleepCtx(ctx, 5*time.Second) {
				return b.Shutdown()
			}
			continue
		}
		log.Println("Successfully connected to Discord API")
		break
	}

	b.scheduler.Start()

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			b.track(func() { b.handleCommand(s, i) })
		case discordgo.InteractionMessageComponent:
			b.track(func() { b.handleComponent(s, i) })
		}
	})
	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.track(func() { b.handleMessage(s, m) })
	})

	// Keep trying to open session until successful
	for {
		if err := b.session.Open(); err != nil {
			log.Printf("Error opening Discord session: %v. Retrying in 5 seconds...", err)
			if !sleepCtx(ctx, 5*time.Second) {
				return b.Shutdown()
			}
			continue
		}
		log.Printf("Session opened successfully (Session ID: %s)", b.session.State.SessionID)
		break
	}

	if err := b.registerCommands(); err != nil {
		log.Printf("Error registering commands: %v", err)
	}

	log.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()
	return b.Shutdown()
}

// Shutdown performs a graceful shutdown of the bot. Every caller returns
// only after the shutdown has completed.
func (b *Bot) Shutdown() error {
	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		<-b.shutdownCh
		return b.shutdownErr
	}
	log.Println("Initiating graceful shutdown...")
	b.isShutdown = true
	registered := b.registered
	b.mu.Unlock()

	b.shutdownErr = b.shutdown(registered)
	close(b.shutdownCh)
	return b.shutdownErr
}

func (b *Bot) shutdown(registered []*discordgo.ApplicationCommand) error {
	// Wait for all handlers to complete
	log.Println("Waiting for active handlers to complete...")
	b.wg.Wait()

	log.Println("Stopping reminder scheduler...")
	b.scheduler.Stop()

	log.Println(formatLogMessage("", "Removing Discord commands", "BOT", ""))
	for _, cmd := range registered {
		err := b.session.ApplicationCommandDelete(b.appID(), "", cmd.ID)
		if err != nil {
			log.Println(formatLogMessage("", fmt.Sprintf("%s: Failed to remove command (%v)", cmd.Name, err), "BOT", ""))
		} else {
			log.Println(formatLogMessage("", fmt.Sprintf("%s: Successfully removed command", cmd.Name), "BOT", ""))
		}
	}

	log.Println("Closing Discord session...")
	sessionErr := b.session.Close()

	log.Println("Closing database connection...")
	b.store.Close()

	if sessionErr != nil {
		return fmt.Errorf("error closing Discord session: %w", sessionErr)
	}
	log.Println("Shutdown completed successfully")
	return nil
}

// Notify delivers a fired reminder as a direct message.
func (b *Bot) Notify(ctx context.Context, r reminder.Reminder) error {
	channel, err := b.session.UserChannelCreate(r.UserID)
	if err != nil {
		return fmt.Errorf("error opening DM channel: %w", err)
	}
	if _, err := b.session.ChannelMessageSend(channel.ID, r.Message()); err != nil {
		return fmt.Errorf("error sending reminder: %w", err)
	}
	return nil
}

// track runs fn unless shutdown has begun, so Shutdown can wait for it.
func (b *Bot) track(fn func()) {
	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	defer b.wg.Done()
	fn()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Bot is ready as %s! Connected to %d guilds", r.User.Username, len(r.Guilds))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
