package cmd

import (
	"fmt"
	"strconv"
	"time"

	"MusicRoom/config"
	"MusicRoom/core/auth"
	"MusicRoom/core/channel"
	"MusicRoom/logger"

	"github.com/spf13/cobra"
)

var sessionShuffle bool

var sessionCmd = &cobra.Command{
	Use:   "session [playlistID]",
	Short: "从歌单创建播放会话",
	Long:  `向播放服务发送create_session，等待服务器返回会话快照并打印`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		playlistID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid playlist id %q: %w", args[0], err)
		}
		return createSession(playlistID, sessionShuffle)
	},
}

func init() {
	sessionCmd.Flags().BoolVar(&sessionShuffle, "shuffle", false, "创建后立即打乱队列")
	rootCmd.AddCommand(sessionCmd)
}

// createSession 打开播放通道发送建会话命令，等首个会话快照回执
func createSession(playlistID int64, shuffle bool) error {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	})
	defer logger.Sync()

	creds := auth.NewTokenProvider(cfg.AccessToken, cfg.RefreshToken)

	ch, err := channel.Open(cfg.SocketURL, channel.TopicPlayer, creds, cfg.DeviceID)
	if err != nil {
		return fmt.Errorf("cannot open player channel: %w", err)
	}
	defer ch.Close()

	msg, err := channel.NewCreateSession(playlistID, shuffle)
	if err != nil {
		return err
	}
	if err := ch.Send(msg); err != nil {
		return fmt.Errorf("cannot send create_session: %w", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		reply, err := ch.ReceiveOne()
		if err != nil {
			return fmt.Errorf("waiting for session snapshot: %w", err)
		}
		if reply.Event != channel.EventSession && reply.Event != channel.EventSessionChanged {
			continue
		}
		session, err := reply.Session()
		if err != nil {
			return err
		}
		if session == nil {
			continue
		}
		fmt.Printf("session %d created with %d tracks\n", session.ID, len(session.TrackQueue))
		return nil
	}
	return fmt.Errorf("no session snapshot received")
}
