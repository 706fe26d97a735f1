package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	storefrontv1 "github.com/vladislavdragonenkov/storefront/api/storefront/v1"
)

type fakeUserServiceClient struct {
	createFn func(context.Context, *storefrontv1.CreateUserRequest, ...grpc.CallOption) (*storefrontv1.User, error)
}

func (f *fakeUserServiceClient) CreateUser(ctx context.Context, req *storefrontv1.CreateUserRequest, opts ...grpc.CallOption) (*storefrontv1.User, error) {
	if f.createFn == nil {
		return nil, errors.New("unexpected CreateUser call")
	}
	return f.createFn(ctx, req, opts...)
}

func (f *fakeUserServiceClient) GetUser(context.Context, *storefrontv1.GetUserRequest, ...grpc.CallOption) (*storefrontv1.User, error) {
	return nil, errors.New("unexpected GetUser call")
}

func (f *fakeUserServiceClient) ListUsers(context.Context, *storefrontv1.ListUsersRequest, ...grpc.CallOption) (*storefrontv1.ListUsersResponse, error) {
	return nil, errors.New("unexpected ListUsers call")
}

func (f *fakeUserServiceClient) UpdateUser(context.Context, *storefrontv1.UpdateUserRequest, ...grpc.CallOption) (*storefrontv1.User, error) {
	return nil, errors.New("unexpected UpdateUser call")
}

func (f *fakeUserServiceClient) DeleteUser(context.Context, *storefrontv1.DeleteUserRequest, ...grpc.CallOption) (*storefrontv1.DeleteUserResponse, error) {
	return nil, errors.New("unexpected DeleteUser call")
}

type fakeOrderServiceClient struct {
	createFn func(context.Context, *storefrontv1.CreateOrderRequest, ...grpc.CallOption) (*storefrontv1.Order, error)
	updateFn func(context.Context, *storefrontv1.UpdateOrderRequest, ...grpc.CallOption) (*storefrontv1.Order, error)
	deleteFn func(context.Context, *storefrontv1.DeleteOrderRequest, ...grpc.CallOption) (*storefrontv1.DeleteOrderResponse, error)
}

func (f *fakeOrderServiceClient) CreateOrder(ctx context.Context, req *storefrontv1.CreateOrderRequest, opts ...grpc.CallOption) (*storefrontv1.Order, error) {
	if f.createFn == nil {
		return nil, errors.New("unexpected CreateOrder call")
	}
	return f.createFn(ctx, req, opts...)
}

func (f *fakeOrderServiceClient) GetOrder(context.Context, *storefrontv1.GetOrderRequest, ...grpc.CallOption) (*storefrontv1.Order, error) {
	return nil, errors.New("unexpected GetOrder call")
}

func (f *fakeOrderServiceClient) UpdateOrder(ctx context.Context, req *storefrontv1.UpdateOrderRequest, opts ...grpc.CallOption) (*storefrontv1.Order, error) {
	if f.updateFn == nil {
		return nil, errors.New("unexpected UpdateOrder call")
	}
	return f.updateFn(ctx, req, opts...)
}

func (f *fakeOrderServiceClient) DeleteOrder(ctx context.Context, req *storefrontv1.DeleteOrderRequest, opts ...grpc.CallOption) (*storefrontv1.DeleteOrderResponse, error) {
	if f.deleteFn == nil {
		return nil, errors.New("unexpected DeleteOrder call")
	}
	return f.deleteFn(ctx, req, opts...)
}

func (f *fakeOrderServiceClient) ListOrders(context.Context, *storefrontv1.ListOrdersRequest, ...grpc.CallOption) (*storefrontv1.ListOrdersResponse, error) {
	return nil, errors.New("unexpected ListOrders call")
}

func (f *fakeOrderServiceClient) ListOrdersByUserId(context.Context, *storefrontv1.GetOrdersByUserIdRequest, ...grpc.CallOption) (*storefrontv1.ListOrdersResponse, error) {
	return nil, errors.New("unexpected ListOrdersByUserId call")
}

func withCLIArgs(t *testing.T, args []string, fn func()) {
	t.Helper()

	oldArgs := os.Args
	oldCommandLine := flag.CommandLine

	os.Args = append([]string{"loadtest"}, args...)
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flag.CommandLine = fs

	defer func() {
		os.Args = oldArgs
		flag.CommandLine = oldCommandLine
	}()

	fn()
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    loadMode
		wantErr string
	}{
		{name: "create", input: "create", want: modeCreate},
		{name: "create-update", input: "create-update", want: modeCreateUpdate},
		{name: "create-update-delete", input: "create-update-delete", want: modeCreateUpdateDelete},
		{name: "unsupported", input: "bad", wantErr: "unsupported mode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseMode(tc.input)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected mode: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("count mode", func(t *testing.T) {
		withCLIArgs(t, []string{
			"-addr=127.0.0.1:50051",
			"-mode=create-update",
			"-total=12",
			"-concurrency=3",
			"-connections=2",
			"-timeout=2s",
			"-delete-rate=10",
			"-catalog-size=7",
			"-price-minor=99",
			"-user-tag=stage",
			"-output=/tmp/out.json",
		}, func() {
			cfg, err := parseConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cfg.totalSet {
				t.Fatalf("expected totalSet=true")
			}
			if cfg.duration != 0 {
				t.Fatalf("expected zero duration, got %s", cfg.duration)
			}
			if cfg.mode != modeCreateUpdate {
				t.Fatalf("unexpected mode: %s", cfg.mode)
			}
			if cfg.total != 12 || cfg.concurrency != 3 || cfg.connections != 2 {
				t.Fatalf("unexpected numeric config: %+v", cfg)
			}
			if cfg.catalogSize != 7 || cfg.priceMinor != 99 {
				t.Fatalf("unexpected catalog config: %+v", cfg)
			}
			if cfg.timeout != 2*time.Second {
				t.Fatalf("unexpected timeout: %s", cfg.timeout)
			}
		})
	})

	t.Run("duration mode", func(t *testing.T) {
		withCLIArgs(t, []string{
			"-duration=3s",
			"-concurrency=2",
			"-connections=1",
		}, func() {
			cfg, err := parseConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.duration != 3*time.Second {
				t.Fatalf("unexpected duration: %s", cfg.duration)
			}
			if cfg.totalSet {
				t.Fatalf("expected totalSet=false when -total was not provided")
			}
		})
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name    string
			args    []string
			wantErr string
		}{
			{name: "invalid duration", args: []string{"-duration=bad"}, wantErr: "parse duration"},
			{name: "negative duration", args: []string{"-duration=-1s"}, wantErr: "duration must be >= 0"},
			{name: "invalid delete rate", args: []string{"-delete-rate=101"}, wantErr: "delete-rate must be between 0 and 100"},
			{name: "empty total", args: []string{"-duration=0s", "-total=0"}, wantErr: "total must be > 0"},
			{name: "empty catalog", args: []string{"-catalog-size=0"}, wantErr: "catalog-size must be > 0"},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				withCLIArgs(t, tc.args, func() {
					_, err := parseConfig()
					if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
						t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
					}
				})
			})
		}
	})
}

func TestDispatchJobs(t *testing.T) {
	t.Run("count mode", func(t *testing.T) {
		jobs := make(chan int, 16)
		dispatchJobs(jobs, config{total: 5})

		var got []int
		for v := range jobs {
			got = append(got, v)
		}
		if !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
			t.Fatalf("unexpected jobs sequence: %v", got)
		}
	})

	t.Run("duration mode", func(t *testing.T) {
		jobs := make(chan int, 32)
		done := make(chan struct{})
		go func() {
			dispatchJobs(jobs, config{duration: 20 * time.Millisecond})
			close(done)
		}()

		count := 0
		for range jobs {
			count++
		}
		<-done
		if count == 0 {
			t.Fatalf("expected non-zero jobs for duration mode")
		}
	})

	t.Run("duration with explicit max total", func(t *testing.T) {
		jobs := make(chan int, 16)
		dispatchJobs(jobs, config{duration: time.Second, total: 3, totalSet: true})
		count := 0
		for range jobs {
			count++
		}
		if count != 3 {
			t.Fatalf("expected 3 jobs, got %d", count)
		}
	})
}

func TestCollectorAndReport(t *testing.T) {
	c := newCollector()
	c.record("scenario", 10*time.Millisecond, codes.OK)
	c.record("scenario", 20*time.Millisecond, codes.Internal)
	c.record("CreateOrder", 15*time.Millisecond, codes.OK)

	snap, ok := c.snapshot("scenario")
	if !ok {
		t.Fatalf("scenario snapshot missing")
	}
	if snap.Calls != 2 || snap.Success != 1 || snap.Failed != 1 {
		t.Fatalf("unexpected scenario snapshot: %+v", snap)
	}
	if snap.Codes[codes.OK.String()] != 1 || snap.Codes[codes.Internal.String()] != 1 {
		t.Fatalf("unexpected codes: %+v", snap.Codes)
	}

	r := c.buildReport(time.Now(), 2*time.Second)
	if r.TotalScenarios != 2 || r.FailedScenarios != 1 {
		t.Fatalf("unexpected report totals: %+v", r)
	}
	if r.RPS <= 0 {
		t.Fatalf("expected positive rps, got %f", r.RPS)
	}
	if _, ok := r.Methods["CreateOrder"]; !ok {
		t.Fatalf("expected CreateOrder stats in report")
	}
}

func TestUtilityFunctions(t *testing.T) {
	if got := grpcCode(nil); got != codes.OK {
		t.Fatalf("grpcCode(nil) = %s, want OK", got)
	}
	if got := grpcCode(status.Error(codes.Unavailable, "down")); got != codes.Unavailable {
		t.Fatalf("unexpected grpc code: %s", got)
	}

	if got := ratio(1, 4); got != 0.25 {
		t.Fatalf("ratio mismatch: %f", got)
	}
	if got := ratio(1, 0); got != 0 {
		t.Fatalf("ratio with zero total must be 0, got %f", got)
	}

	values := []float64{10, 20, 30, 40}
	summary := buildLatencySummary(values)
	if summary.P50 <= 0 || summary.P95 <= 0 || summary.Max != 40 {
		t.Fatalf("unexpected latency summary: %+v", summary)
	}
	if p := percentile(values, 95); p <= 0 {
		t.Fatalf("unexpected percentile: %f", p)
	}

	if got := runTarget(config{total: 50}); got != "count:50" {
		t.Fatalf("unexpected run target: %s", got)
	}
	if got := runTarget(config{duration: 2 * time.Second}); got != "duration:2s" {
		t.Fatalf("unexpected duration run target: %s", got)
	}
	if got := runTarget(config{duration: 2 * time.Second, total: 10, totalSet: true}); got != "duration:2s,max-total:10" {
		t.Fatalf("unexpected capped duration run target: %s", got)
	}
}

func TestPickProducts(t *testing.T) {
	catalog := []int64{101, 102, 103}

	if got := pickProducts(catalog, 0); !slices.Equal(got, []int64{101}) {
		t.Fatalf("unexpected products for index 0: %v", got)
	}
	if got := pickProducts(catalog, 2); !slices.Equal(got, []int64{103, 101, 102}) {
		t.Fatalf("unexpected products for index 2: %v", got)
	}
	if got := pickProducts(catalog, 4); !slices.Equal(got, []int64{102, 103}) {
		t.Fatalf("unexpected products for index 4: %v", got)
	}
}

func TestShouldDeleteScenario(t *testing.T) {
	if shouldDeleteScenario(5, 0) {
		t.Fatalf("zero rate must never delete")
	}
	if !shouldDeleteScenario(5, 100) {
		t.Fatalf("full rate must always delete")
	}
	if !shouldDeleteScenario(9, 10) || shouldDeleteScenario(10, 10) {
		t.Fatalf("rate 10 must delete only indices 0..9 within each hundred")
	}
}

func TestWriteJSONReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	sample := report{TotalScenarios: 2, SuccessScenarios: 2}
	if err := writeJSONReport(path, sample); err != nil {
		t.Fatalf("writeJSONReport error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.TotalScenarios != 2 || decoded.SuccessScenarios != 2 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
}

func TestRunScenario(t *testing.T) {
	c := newCollector()
	catalog := []int64{11, 12, 13}

	runCfg := config{
		mode:    modeCreateUpdateDelete,
		timeout: time.Second,
		userTag: "load",
	}

	var deleted int64
	cs := clientSet{
		users: &fakeUserServiceClient{
			createFn: func(_ context.Context, req *storefrontv1.CreateUserRequest, _ ...grpc.CallOption) (*storefrontv1.User, error) {
				if req.Email == "" || !strings.Contains(req.Email, "run-1") {
					t.Fatalf("unexpected email: %q", req.Email)
				}
				return &storefrontv1.User{Id: 7, Name: req.Name, Email: req.Email}, nil
			},
		},
		orders: &fakeOrderServiceClient{
			createFn: func(_ context.Context, req *storefrontv1.CreateOrderRequest, _ ...grpc.CallOption) (*storefrontv1.Order, error) {
				if req.UserId != 7 {
					t.Fatalf("unexpected user id: %d", req.UserId)
				}
				if len(req.ProductIds) == 0 {
					t.Fatalf("product ids are required")
				}
				return &storefrontv1.Order{Id: 42, UserId: req.UserId}, nil
			},
			updateFn: func(_ context.Context, req *storefrontv1.UpdateOrderRequest, _ ...grpc.CallOption) (*storefrontv1.Order, error) {
				if req.Id != 42 {
					t.Fatalf("unexpected order id: %d", req.Id)
				}
				if req.Status == nil || *req.Status != 1 {
					t.Fatalf("expected status transition to PAID, got %+v", req.Status)
				}
				return &storefrontv1.Order{Id: req.Id, Status: *req.Status}, nil
			},
			deleteFn: func(_ context.Context, req *storefrontv1.DeleteOrderRequest, _ ...grpc.CallOption) (*storefrontv1.DeleteOrderResponse, error) {
				atomic.AddInt64(&deleted, 1)
				return &storefrontv1.DeleteOrderResponse{Deleted: true}, nil
			},
		},
	}

	if err := runScenario(cs, runCfg, 1, "run-1", catalog, c); err != nil {
		t.Fatalf("runScenario failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one delete call, got %d", deleted)
	}

	for _, method := range []string{"CreateUser", "CreateOrder", "UpdateOrder", "DeleteOrder", "scenario"} {
		snap, ok := c.snapshot(method)
		if !ok || snap.Calls == 0 {
			t.Fatalf("%s metric missing", method)
		}
	}

	failingSet := clientSet{
		users: &fakeUserServiceClient{
			createFn: func(context.Context, *storefrontv1.CreateUserRequest, ...grpc.CallOption) (*storefrontv1.User, error) {
				return nil, status.Error(codes.Unavailable, "users unavailable")
			},
		},
		orders: &fakeOrderServiceClient{},
	}
	if err := runScenario(failingSet, runCfg, 2, "run-2", catalog, c); status.Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable error, got %v", err)
	}

	snap, ok := c.snapshot("scenario")
	if !ok || snap.Failed == 0 {
		t.Fatalf("expected failed scenario recorded, got %+v", snap)
	}
}

func TestRunScenario_CreateModeSkipsUpdate(t *testing.T) {
	c := newCollector()
	cs := clientSet{
		users: &fakeUserServiceClient{
			createFn: func(_ context.Context, req *storefrontv1.CreateUserRequest, _ ...grpc.CallOption) (*storefrontv1.User, error) {
				return &storefrontv1.User{Id: 1, Email: req.Email}, nil
			},
		},
		orders: &fakeOrderServiceClient{
			createFn: func(_ context.Context, req *storefrontv1.CreateOrderRequest, _ ...grpc.CallOption) (*storefrontv1.Order, error) {
				return &storefrontv1.Order{Id: 1, UserId: req.UserId}, nil
			},
		},
	}

	cfg := config{mode: modeCreate, timeout: time.Second, userTag: "load"}
	if err := runScenario(cs, cfg, 0, "run-0", []int64{5}, c); err != nil {
		t.Fatalf("runScenario failed: %v", err)
	}
	if _, ok := c.snapshot("UpdateOrder"); ok {
		t.Fatalf("create mode must not call UpdateOrder")
	}
}

func TestPrintReport(t *testing.T) {
	r := report{
		TotalScenarios:   2,
		SuccessScenarios: 2,
		Methods: map[string]methodReport{
			"scenario":    {Calls: 2, Success: 2},
			"CreateOrder": {Calls: 2, Success: 2},
		},
	}

	out := captureStdout(t, func() {
		printReport(r, config{mode: modeCreate, total: 2})
	})

	if !strings.Contains(out, "Load test summary") {
		t.Fatalf("expected summary header, got: %s", out)
	}
	if !strings.Contains(out, "CreateOrder") {
		t.Fatalf("expected method section, got: %s", out)
	}
}

type loadtestUserServer struct {
	storefrontv1.UnimplementedUserServiceServer
	nextID int64
}

func (s *loadtestUserServer) CreateUser(_ context.Context, req *storefrontv1.CreateUserRequest) (*storefrontv1.User, error) {
	id := atomic.AddInt64(&s.nextID, 1)
	return &storefrontv1.User{Id: id, Name: req.Name, Email: req.Email}, nil
}

type loadtestProductServer struct {
	storefrontv1.UnimplementedProductServiceServer
	nextID int64
}

func (s *loadtestProductServer) CreateProduct(_ context.Context, req *storefrontv1.CreateProductRequest) (*storefrontv1.Product, error) {
	id := atomic.AddInt64(&s.nextID, 1)
	return &storefrontv1.Product{Id: id, Name: req.Name, PriceMinor: req.PriceMinor}, nil
}

type loadtestOrderServer struct {
	storefrontv1.UnimplementedOrderServiceServer
	nextID int64
}

func (s *loadtestOrderServer) CreateOrder(_ context.Context, req *storefrontv1.CreateOrderRequest) (*storefrontv1.Order, error) {
	id := atomic.AddInt64(&s.nextID, 1)
	return &storefrontv1.Order{Id: id, UserId: req.UserId, ProductIds: req.ProductIds}, nil
}

func (s *loadtestOrderServer) UpdateOrder(_ context.Context, req *storefrontv1.UpdateOrderRequest) (*storefrontv1.Order, error) {
	order := &storefrontv1.Order{Id: req.Id}
	if req.Status != nil {
		order.Status = *req.Status
	}
	return order, nil
}

func (s *loadtestOrderServer) DeleteOrder(_ context.Context, req *storefrontv1.DeleteOrderRequest) (*storefrontv1.DeleteOrderResponse, error) {
	return &storefrontv1.DeleteOrderResponse{
		Deleted: true,
		Message: fmt.Sprintf("Order with id %d deleted successfully", req.Id),
	}, nil
}

func TestMainSmoke(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func(lis net.Listener) {
		if err := lis.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			t.Fatalf("close listener: %v", err)
		}
	}(lis)

	srv := grpc.NewServer()
	storefrontv1.RegisterUserServiceServer(srv, &loadtestUserServer{})
	storefrontv1.RegisterProductServiceServer(srv, &loadtestProductServer{})
	storefrontv1.RegisterOrderServiceServer(srv, &loadtestOrderServer{})
	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "main-report.json")

	withCLIArgs(t, []string{
		"-addr=" + lis.Addr().String(),
		"-mode=create-update-delete",
		"-total=5",
		"-concurrency=2",
		"-connections=1",
		"-catalog-size=2",
		"-timeout=2s",
		"-output=" + outPath,
	}, func() {
		main()
	})

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected report file from main: %v", err)
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured output: %v", err)
	}
	_ = r.Close()

	return string(data)
}

func TestFakeClientsImplementInterfaces(t *testing.T) {
	var _ storefrontv1.UserServiceClient = (*fakeUserServiceClient)(nil)
	var _ storefrontv1.OrderServiceClient = (*fakeOrderServiceClient)(nil)
}
