package main

import (
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"gorm.io/gorm/logger"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/database"
	"gitpilot/internal/events"
	"gitpilot/internal/repositories"
	"gitpilot/internal/services"
	"gitpilot/internal/session"
	"gitpilot/internal/utils"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if database.IsDevelopment() {
		// .env is optional; dev convenience only
		_ = utils.LoadEnv()
	}

	app := NewApp()

	db, err := database.Init(database.Config{
		LogLevel: logger.Warn,
	})
	if err != nil {
		fmt.Println("Error opening database:", err)
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		app.dbClose = sqlDB.Close
	}

	appSettingsRepo := repositories.NewAppSettingsRepository(db)
	recentsRepo := repositories.NewRecentRepoRepository(db)

	serverURL := os.Getenv("GITPILOT_SERVER_URL")
	if serverURL == "" {
		settings, err := appSettingsRepo.Get(context.Background())
		if err != nil {
			fmt.Println("Error reading app settings:", err)
			return
		}
		serverURL = settings.ServerURL
	}
	api, err := apiclient.New(serverURL)
	if err != nil {
		fmt.Println("Error configuring server client:", err)
		return
	}

	store, err := session.NewKeyringStore()
	if err != nil {
		fmt.Println("Error opening credential store:", err)
		return
	}

	authService := services.NewAuthService(api, store)
	deviceService := services.NewDeviceFlowService(api, authService)
	repoService := services.NewRepoService(api, recentsRepo)
	contextService := services.NewContextService(api)
	chatService := services.NewChatService(api, repoService)
	settingsService := services.NewSettingsService(api, appSettingsRepo)
	flowService := services.NewFlowService(api)
	workspaceService, err := services.NewWorkspaceService(authService.Token)
	if err != nil {
		fmt.Println("Error preparing workspace cache:", err)
		return
	}

	// Logout discards everything keyed to the session
	authService.OnLogout(func() {
		deviceService.Cancel()
		repoService.Reset()
		chatService.Reset()
	})

	app.auth = authService
	app.device = deviceService

	err = wails.Run(&options.App{
		Title:  "GitPilot",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "GitPilot",
		},
		BackgroundColour: &options.RGBA{R: 24, G: 28, B: 38, A: 1},
		OnStartup: func(ctx context.Context) {
			events.EnableRuntimeEmitter()
			app.startup(ctx)
			authService.Startup(ctx)
			deviceService.Startup(ctx)
			repoService.Startup(ctx)
			contextService.Startup(ctx)
			chatService.Startup(ctx)
			settingsService.Startup(ctx)
			flowService.Startup(ctx)
			workspaceService.Startup(ctx)
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
			authService,
			deviceService,
			repoService,
			contextService,
			chatService,
			settingsService,
			flowService,
			workspaceService,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
