package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/image-mcp/internal/mcp"
	"github.com/Laisky/image-mcp/internal/mcp/images"
	"github.com/Laisky/image-mcp/internal/mcp/tools"
	"github.com/Laisky/image-mcp/internal/web"
	"github.com/Laisky/image-mcp/library/blob"
	"github.com/Laisky/image-mcp/library/fetch"
	"github.com/Laisky/image-mcp/library/imagesearch"
	"github.com/Laisky/image-mcp/library/imagesearch/browser"
	"github.com/Laisky/image-mcp/library/imagesearch/scrape"
	"github.com/Laisky/image-mcp/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `serve the image MCP tools over streamable HTTP`,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		server := buildMCPServer(ctx)
		web.RunServer(gconfig.Shared.GetString("listen"), server.Handler())
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}

// buildMCPServer assembles the search engines, blob store and MCP tools
// from the loaded configuration. Any wiring failure is fatal.
func buildMCPServer(ctx context.Context) *mcp.Server {
	fetcher := fetch.NewClient(fetch.WithLogger(log.Logger.Named("fetch")))

	manager := imagesearch.NewManager(buildSearchEngines(fetcher),
		imagesearch.WithDefaultMaxResults(gconfig.Shared.GetInt("settings.search.max_results")))
	log.Logger.Info("image search engines ready",
		zap.Strings("engines", manager.AvailableEngines()))

	store, err := blob.New(
		gconfig.Shared.GetString("settings.blob.endpoint"),
		gconfig.Shared.GetString("settings.blob.access_key"),
		gconfig.Shared.GetString("settings.blob.secret_key"),
		gconfig.Shared.GetString("settings.blob.bucket"),
		gconfig.Shared.GetBool("settings.blob.secure"),
	)
	if err != nil {
		log.Logger.Panic("create blob store", zap.Error(err))
	}
	if err = store.Ensure(ctx); err != nil {
		log.Logger.Panic("ensure blob bucket", zap.Error(err))
	}

	service, err := images.NewService(store, fetcher)
	if err != nil {
		log.Logger.Panic("create image service", zap.Error(err))
	}

	server, err := mcp.NewServer(
		buildToolset(manager, service),
		mcp.LoadToolsSettingsFromConfig(),
		log.Logger,
	)
	if err != nil {
		log.Logger.Panic("create mcp server", zap.Error(err))
	}

	return server
}

// buildSearchEngines returns the engines in fallback order, browser first.
func buildSearchEngines(fetcher *fetch.Client) []imagesearch.Engine {
	var engines []imagesearch.Engine

	if boolSettingDefaultTrue("settings.search.browser_enabled") {
		cfg := browser.DefaultConfig()
		cfg.ChromePath = gconfig.Shared.GetString("settings.search.chrome_path")
		engines = append(engines, browser.NewEngine(cfg,
			browser.WithLogger(log.Logger.Named("browser_search"))))
	}

	scrapeEngine, err := scrape.NewEngine(fetcher,
		scrape.WithLogger(log.Logger.Named("scrape_search")))
	if err != nil {
		log.Logger.Panic("create scrape engine", zap.Error(err))
	}

	return append(engines, scrapeEngine)
}

func buildToolset(manager *imagesearch.Manager, service *images.Service) mcp.Toolset {
	searchTool, err := tools.NewSearchImagesTool(manager, log.Logger.Named("search_images"))
	if err != nil {
		log.Logger.Panic("create search_images tool", zap.Error(err))
	}
	uploadTool, err := tools.NewUploadImageTool(service, log.Logger.Named("upload_image"))
	if err != nil {
		log.Logger.Panic("create upload_image tool", zap.Error(err))
	}
	saveTool, err := tools.NewSaveImagesTool(service, log.Logger.Named("save_images"))
	if err != nil {
		log.Logger.Panic("create save_images tool", zap.Error(err))
	}
	downloadTool, err := tools.NewDownloadImageTool(service, log.Logger.Named("download_image"))
	if err != nil {
		log.Logger.Panic("create download_image tool", zap.Error(err))
	}

	return mcp.Toolset{
		SearchImages:  searchTool,
		UploadImage:   uploadTool,
		SaveImages:    saveTool,
		DownloadImage: downloadTool,
	}
}

func boolSettingDefaultTrue(key string) bool {
	if gconfig.Shared.Get(key) == nil {
		return true
	}
	return gconfig.Shared.GetBool(key)
}
