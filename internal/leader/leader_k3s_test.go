package leader_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/k3s"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/leader"
)

const k3sLease = "auctiond-test-leader"

func k3sClient(t *testing.T, ctx context.Context) kubernetes.Interface {
	t.Helper()

	ctr, err := k3s.Run(ctx, "rancher/k3s:v1.31.6-k3s1")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("starting k3s container: %v", err)
	}
	kubeConfig, err := ctr.GetKubeConfig(ctx)
	if err != nil {
		t.Fatalf("getting kubeconfig: %v", err)
	}
	restCfg, err := clientcmd.RESTConfigFromKubeConfig(kubeConfig)
	if err != nil {
		t.Fatalf("building rest config: %v", err)
	}
	client, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		t.Fatalf("creating kubernetes client: %v", err)
	}
	return client
}

func leaseHolder(ctx context.Context, client kubernetes.Interface) (string, error) {
	lease, err := client.CoordinationV1().Leases("default").Get(ctx, k3sLease, metav1.GetOptions{})
	if err != nil {
		return "", err
	}
	if lease.Spec.HolderIdentity == nil {
		return "", nil
	}
	return *lease.Spec.HolderIdentity, nil
}

// TestRun_K3sLeaseLifecycle runs an election against a real API server: the
// replica takes the Lease, the auction callback runs under it, and on
// shutdown the Lease is released and OnStoppedLeading fires before Run
// returns. Skipped in short mode.
func TestRun_K3sLeaseLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping k3s integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := k3sClient(t, ctx)
	origFactory := leader.ClientFactory
	leader.ClientFactory = func() (kubernetes.Interface, error) { return client, nil }
	t.Cleanup(func() { leader.ClientFactory = origFactory })

	t.Setenv("POD_NAME", "auctiond-0")

	cfg := config.LeaderElectionConfig{
		Enabled:        true,
		LeaseName:      k3sLease,
		LeaseNamespace: "default",
		LeaseDuration:  5 * time.Second,
		RenewDeadline:  3 * time.Second,
		RetryPeriod:    1 * time.Second,
	}

	started := make(chan struct{})
	stopped := make(chan struct{})
	runCtx, stopRun := context.WithCancel(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- leader.Run(runCtx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), leader.Callbacks{
			OnStartedLeading: func(ctx context.Context) {
				close(started)
				<-ctx.Done()
			},
			OnStoppedLeading: func() { close(stopped) },
		})
	}()

	select {
	case <-started:
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for leadership")
	}

	holder, err := leaseHolder(ctx, client)
	if err != nil {
		t.Fatalf("reading lease: %v", err)
	}
	if holder != "auctiond-0" {
		t.Errorf("lease holder = %q while leading, want auctiond-0", holder)
	}

	stopRun()

	select {
	case runErr := <-errCh:
		if runErr != nil {
			t.Fatalf("Run() error = %v", runErr)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for Run to return")
	}

	select {
	case <-stopped:
	default:
		t.Error("OnStoppedLeading did not run before Run returned")
	}

	holder, err = leaseHolder(ctx, client)
	if err != nil {
		t.Fatalf("reading lease after release: %v", err)
	}
	if holder != "" {
		t.Errorf("lease holder = %q after shutdown, want released", holder)
	}
}
