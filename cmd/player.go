package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"MusicRoom/cache"
	"MusicRoom/config"
	"MusicRoom/core/auth"
	"MusicRoom/core/catalog"
	"MusicRoom/core/channel"
	"MusicRoom/core/player"
	"MusicRoom/logger"

	"github.com/spf13/cobra"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "启动播放客户端",
	Long:  `连接共享播放会话，跟随服务器状态播放并上报进度`,
	Run: func(cmd *cobra.Command, args []string) {
		runPlayer()
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)
}

// consoleNowPlaying 把正在播放信息打印到终端
type consoleNowPlaying struct{}

func (consoleNowPlaying) Update(info player.NowPlayingInfo) {
	state := "paused"
	if info.Playing {
		state = "playing"
	}
	fmt.Printf("[%s] %s - %s\n", state, info.Title, info.Artist)
}

func (consoleNowPlaying) UpdateElapsed(elapsed float64) {}

// runPlayer 组装并运行播放客户端
func runPlayer() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
	defer logger.Sync()

	logger.Info("starting music room player",
		logger.String("server", cfg.ServerURL),
		logger.String("device", cfg.DeviceID),
	)

	creds := auth.NewTokenProvider(cfg.AccessToken, cfg.RefreshToken)
	if !creds.IsAuthorized() {
		logger.Fatal("missing or expired access token, set ACCESS_TOKEN in .env")
	}

	// Redis不可用时实体缓存退化为纯内存，客户端仍可运行
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("redis unavailable, entity cache disabled", logger.ErrorField(err))
	}
	defer cache.CloseRedis()

	provider := catalog.NewProvider(catalog.NewClient(cfg.ServerURL, creds))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider.Refresh(ctx)

	supervisor := player.NewSupervisor(cfg.SocketURL, creds, cfg.DeviceID)
	defer supervisor.Close()

	ctrl := player.NewController(
		player.NewClockPlayback(),
		consoleNowPlaying{},
		provider,
		supervisor,
		cfg.Quality,
	)
	go ctrl.Run(ctx)

	onPlayerMessage := func(msg *channel.Message) {
		switch msg.Event {
		case channel.EventSession, channel.EventSessionChanged:
			session, err := msg.Session()
			if err != nil {
				logger.Warn("dropping malformed session message", logger.ErrorField(err))
				return
			}
			provider.SaveSession(ctx, session)
			ctrl.AssignSession(session)
		default:
			logger.Debug("ignoring player event", logger.String("event", string(msg.Event)))
		}
	}

	onPlaylistsMessage := func(msg *channel.Message) {
		if msg.Event != channel.EventPlaylistsChanged {
			return
		}
		playlists, err := msg.Playlists()
		if err != nil {
			logger.Warn("dropping malformed playlists message", logger.ErrorField(err))
			return
		}
		provider.ApplyPlaylistsChanged(ctx, playlists)
	}

	if err := supervisor.EnsurePlayer(onPlayerMessage); err != nil {
		logger.Fatal("cannot subscribe player topic", logger.ErrorField(err))
	}
	if err := supervisor.EnsureEvent(onPlayerMessage); err != nil {
		logger.Warn("event topic unavailable", logger.ErrorField(err))
	}
	if err := supervisor.EnsurePlaylists(onPlaylistsMessage); err != nil {
		logger.Warn("playlists topic unavailable", logger.ErrorField(err))
	}

	// 启动时拉取当前会话快照，服务器无会话时保持空闲
	if session := provider.PlayerSession(ctx); session != nil {
		ctrl.AssignSession(session)
	}

	// 监听.env变化，热更新音质偏好
	stopWatch, err := config.Watch(".env", func(next *config.Config) {
		ctrl.SetQuality(next.Quality)
	})
	if err != nil {
		logger.Warn("config watch disabled", logger.ErrorField(err))
	} else {
		defer stopWatch()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down player")
}
