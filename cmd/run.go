package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"voicebot/bot"
	"voicebot/config"
	"voicebot/database"
	"voicebot/events"
	"voicebot/repository"
	"voicebot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting voicebot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// The session is created unopened so the channel service can be handed to
	// the domain services before any gateway events arrive.
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	channelService := bot.NewChannelService(session)

	// Initialize services
	log.Println("Initializing services...")
	lifecycleService := service.NewLifecycleService(uowFactory, channelService)
	ownershipService := service.NewOwnershipService(uowFactory, channelService)
	guildSettingsService := service.NewGuildSettingsService(uowFactory, channelService, cfg.AdminDiscordID)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(session, lifecycleService, ownershipService, guildSettingsService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
