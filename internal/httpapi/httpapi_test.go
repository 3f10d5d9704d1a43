package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"chorddfs/internal/logger"
	"chorddfs/internal/node"
	"chorddfs/internal/ring"
	"chorddfs/internal/storage"
)

// stubTransport panics if any method is invoked: the tests below only ever
// run a single node, which is responsible for the whole ring, so node.Node
// never needs to dial a peer.
type stubTransport struct{}

func (stubTransport) FindSuccessor(context.Context, string, ring.ID, ring.Node) (ring.Node, error) {
	panic("unexpected outbound RPC: find_successor")
}
func (stubTransport) GetPredecessor(context.Context, string) (ring.Node, bool, error) {
	panic("unexpected outbound RPC: get_predecessor")
}
func (stubTransport) Notify(context.Context, string, ring.Node) error {
	panic("unexpected outbound RPC: notify")
}
func (stubTransport) Join(context.Context, string, ring.Node) (ring.Node, error) {
	panic("unexpected outbound RPC: join")
}
func (stubTransport) Ping(context.Context, string) error {
	panic("unexpected outbound RPC: ping")
}
func (stubTransport) TransferRange(context.Context, string, ring.ID, ring.ID, func(string, []byte) error) error {
	panic("unexpected outbound RPC: transfer_range")
}
func (stubTransport) ConfirmTransfer(context.Context, string, ring.ID, ring.ID) error {
	panic("unexpected outbound RPC: confirm_transfer")
}
func (stubTransport) ForwardFile(context.Context, string, string, []byte) error {
	panic("unexpected outbound RPC: forward_file")
}
func (stubTransport) GetFile(context.Context, string, string) (io.ReadCloser, error) {
	panic("unexpected outbound RPC: get_file")
}
func (stubTransport) DeleteFile(context.Context, string, string) error {
	panic("unexpected outbound RPC: delete_file")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	space, err := ring.NewSpace(10)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	self := ring.Node{ID: space.HashString("solo"), Address: "solo:9000"}
	rt := ring.New(self, space)
	store := storage.NewMemoryBackend(&logger.NopLogger{})
	n := node.New(rt, store, stubTransport{}, node.WithLogger(&logger.NopLogger{}))
	srv := New(n, &logger.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decodeJSON[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestInfoReflectsSoloBootstrap(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/chord/info")
	if err != nil {
		t.Fatalf("GET /chord/info: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	info := decodeJSON[infoResponse](t, resp.Body)
	if info.Successor != info.Self {
		t.Errorf("successor = %+v, want self %+v", info.Successor, info.Self)
	}
	if info.Predecessor != nil {
		t.Errorf("predecessor = %+v, want nil", info.Predecessor)
	}
}

func TestFindSuccessorReturnsSelfWhenResponsible(t *testing.T) {
	ts := newTestServer(t)
	body, _ := json.Marshal(findSuccessorRequest{Key: 5, Origin: peerRef{ID: 5, Address: "x"}})
	resp, err := http.Post(ts.URL+"/chord/successor", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /chord/successor: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeJSON[peerRef](t, resp.Body)
	if got.Address != "solo:9000" {
		t.Errorf("successor address = %q, want solo:9000", got.Address)
	}
}

func TestPredecessorNotSetReturns404(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/chord/predecessor")
	if err != nil {
		t.Fatalf("GET /chord/predecessor: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func uploadFile(t *testing.T, baseURL, path, name string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+path, &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	return resp
}

func TestSaveGetDeleteRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	name, want := "report.txt", []byte("quarterly numbers")

	resp := uploadFile(t, ts.URL, "/files", name, want)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d, want 200", resp.StatusCode)
	}

	getResp, err := http.Get(ts.URL + "/files/" + name)
	if err != nil {
		t.Fatalf("GET /files/%s: %v", name, err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", getResp.StatusCode)
	}
	got, _ := io.ReadAll(getResp.Body)
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	listResp, err := http.Get(ts.URL + "/files")
	if err != nil {
		t.Fatalf("GET /files: %v", err)
	}
	defer listResp.Body.Close()
	files := decodeJSON[filesResponse](t, listResp.Body)
	if len(files.Files) != 1 || files.Files[0] != name {
		t.Errorf("files = %v, want [%s]", files.Files, name)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/files/"+name, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /files/%s: %v", name, err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", delResp.StatusCode)
	}

	missingResp, err := http.Get(ts.URL + "/files/" + name)
	if err != nil {
		t.Fatalf("GET /files/%s after delete: %v", name, err)
	}
	defer missingResp.Body.Close()
	if missingResp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", missingResp.StatusCode)
	}
}

func TestForwardFileStoresWithoutOwnershipCheck(t *testing.T) {
	ts := newTestServer(t)
	resp := uploadFile(t, ts.URL, "/files/forward", "peer-pushed.bin", []byte{1, 2, 3})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forward status = %d, want 200", resp.StatusCode)
	}

	getResp, err := http.Get(ts.URL + "/files/peer-pushed.bin")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", getResp.StatusCode)
	}
}

func TestTransferRangeStreamsEntireRange(t *testing.T) {
	ts := newTestServer(t)
	resp := uploadFile(t, ts.URL, "/files", "migrate-me.bin", []byte("payload"))
	resp.Body.Close()

	body, _ := json.Marshal(transferRangeRequest{Lo: 0, Hi: 1023})
	transferResp, err := http.Post(ts.URL+"/files/transfer", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /files/transfer: %v", err)
	}
	defer transferResp.Body.Close()
	if transferResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", transferResp.StatusCode)
	}
	_, params, err := mime.ParseMediaType(transferResp.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse content-type: %v", err)
	}
	mr := multipart.NewReader(transferResp.Body, params["boundary"])
	names := map[string]bool{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		names[part.FileName()] = true
	}
	if !names["migrate-me.bin"] {
		t.Errorf("expected migrate-me.bin in transferred range, got %v", names)
	}

	listResp, _ := http.Get(ts.URL + "/files")
	defer listResp.Body.Close()
	files := decodeJSON[filesResponse](t, listResp.Body)
	if len(files.Files) != 1 {
		t.Errorf("files after transfer, before confirm = %v, want migrate-me.bin still present", files.Files)
	}

	confirmResp, err := http.Post(ts.URL+"/files/transfer/confirm", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /files/transfer/confirm: %v", err)
	}
	defer confirmResp.Body.Close()
	if confirmResp.StatusCode != http.StatusOK {
		t.Fatalf("confirm status = %d, want 200", confirmResp.StatusCode)
	}

	listResp2, _ := http.Get(ts.URL + "/files")
	defer listResp2.Body.Close()
	filesAfterConfirm := decodeJSON[filesResponse](t, listResp2.Body)
	if len(filesAfterConfirm.Files) != 0 {
		t.Errorf("files after confirm = %v, want none (range owner released them)", filesAfterConfirm.Files)
	}
}
