package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Upload submits one upload job and blocks until it reaches a terminal state.
func (c *Client) Upload(req UploadRequest) (*UploadResponse, error) {
	var resp UploadResponse
	if err := c.client.Call("Vidlift.Upload", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches a user's upload history.
func (c *Client) History(req HistoryRequest) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("Vidlift.History", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WatchSubscribe opens a progress subscription for the user.
func (c *Client) WatchSubscribe(userID int64) (*WatchSubscribeResponse, error) {
	var resp WatchSubscribeResponse
	if err := c.client.Call("Vidlift.WatchSubscribe", WatchSubscribeRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WatchFetch long-polls a subscription for queued events.
func (c *Client) WatchFetch(subscriptionID string, limit int) (*WatchFetchResponse, error) {
	var resp WatchFetchResponse
	req := WatchFetchRequest{SubscriptionID: subscriptionID, Limit: limit}
	if err := c.client.Call("Vidlift.WatchFetch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WatchCancel tears a subscription down.
func (c *Client) WatchCancel(subscriptionID string) (*WatchCancelResponse, error) {
	var resp WatchCancelResponse
	if err := c.client.Call("Vidlift.WatchCancel", WatchCancelRequest{SubscriptionID: subscriptionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Vidlift.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests daemon shutdown.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Vidlift.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
