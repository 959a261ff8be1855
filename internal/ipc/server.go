package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"vidlift/internal/api"
	"vidlift/internal/jobs"
	"vidlift/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path     string
	logger   *slog.Logger
	listener net.Listener
	svc      *api.Service
	dbPath   string
	stop     func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. stop is
// invoked by the Stop operation and should initiate daemon shutdown.
func NewServer(ctx context.Context, path string, svc *api.Service, dbPath string, stop func(), logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("ipc server requires service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	// Surface method-signature problems at startup rather than per
	// connection.
	if err := rpc.NewServer().RegisterName("Vidlift", &service{svc: svc, ctx: ctx}); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:     path,
		logger:   logger,
		listener: listener,
		svc:      svc,
		dbPath:   dbPath,
		stop:     stop,
		ctx:      serverCtx,
		cancel:   cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.serveConn(c)
			}(conn)
		}
	}()
}

// serveConn handles one client connection with its own context, cancelled
// as soon as the codec stops reading requests. A client that drops
// mid-call takes the work it started down with it.
func (s *Server) serveConn(conn net.Conn) {
	connCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	srv := rpc.NewServer()
	handler := &service{svc: s.svc, dbPath: s.dbPath, stop: s.stop, logger: s.logger, ctx: connCtx}
	if err := srv.RegisterName("Vidlift", handler); err != nil {
		s.logger.Warn("register rpc service", logging.Error(err))
		_ = conn.Close()
		return
	}
	srv.ServeCodec(jsonrpc.NewServerCodec(conn))
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	svc    *api.Service
	dbPath string
	stop   func()
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

// Upload runs one job to completion. Pipeline failures are reported in the
// result so callers always see the terminal job state; only request-shape
// problems surface as RPC errors.
func (s *service) Upload(req UploadRequest, resp *UploadResponse) error {
	s.log().Debug("upload requested",
		logging.Int64(logging.FieldUserID, req.UserID),
		logging.String("title", req.Title))

	result, err := s.svc.Upload(s.ctx, jobs.Request{
		UserID:        req.UserID,
		AccountID:     req.AccountID,
		VideoPath:     req.VideoPath,
		AudioPath:     req.AudioPath,
		ThumbnailPath: req.ThumbnailPath,
		Title:         req.Title,
		Description:   req.Description,
		Tags:          req.Tags,
		CategoryID:    req.CategoryID,
		PrivacyStatus: req.PrivacyStatus,
	})
	if result == nil {
		return err
	}
	resp.Result = *result
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.svc.History(s.ctx, req.UserID, req.Search, req.SortBy, req.Descending)
	if err != nil {
		return err
	}
	resp.Entries = entries
	return nil
}

func (s *service) WatchSubscribe(req WatchSubscribeRequest, resp *WatchSubscribeResponse) error {
	resp.SubscriptionID = s.svc.Subscribe(req.UserID)
	s.log().Debug("watch subscription opened",
		logging.Int64(logging.FieldUserID, req.UserID),
		logging.String("subscription_id", resp.SubscriptionID))
	return nil
}

func (s *service) WatchFetch(req WatchFetchRequest, resp *WatchFetchResponse) error {
	events, err := s.svc.FetchEvents(s.ctx, req.SubscriptionID, req.Limit)
	if err != nil {
		return err
	}
	resp.Events = events
	return nil
}

func (s *service) WatchCancel(req WatchCancelRequest, resp *WatchCancelResponse) error {
	resp.Cancelled = s.svc.Unsubscribe(req.SubscriptionID)
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	report := s.svc.Status(s.dbPath)
	resp.Running = report.Running
	resp.ActiveJobs = report.ActiveJobs
	resp.MaxJobs = report.MaxJobs
	resp.SocketPath = report.SocketPath
	resp.DBPath = report.DBPath
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Info("daemon stop requested via IPC")
	if s.stop != nil {
		s.stop()
	}
	resp.Stopped = true
	return nil
}
