package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"ci-relay/internal/model"
	"ci-relay/internal/pipeline"
	pkgLog "ci-relay/pkg/log"
)

// DockerProvisioner runs backing services as containers on the local
// daemon, one fresh container per pipeline run.
type DockerProvisioner struct {
	docker      client.APIClient
	interval    time.Duration
	maxAttempts int
	l           pkgLog.Logger
}

var _ pipeline.Provisioner = (*DockerProvisioner)(nil)

// NewDockerProvisioner connects to the daemon from the environment.
// interval and maxAttempts bound the readiness poll of every instance.
func NewDockerProvisioner(interval time.Duration, maxAttempts int, l pkgLog.Logger) (*DockerProvisioner, error) {
	dcli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}
	return &DockerProvisioner{docker: dcli, interval: interval, maxAttempts: maxAttempts, l: l}, nil
}

// Provision pulls the image and starts a container with the service port
// published on localhost.
func (p *DockerProvisioner) Provision(ctx context.Context, svc model.Service) (pipeline.ServiceInstance, error) {
	reader, err := p.docker.ImagePull(ctx, svc.Image, image.PullOptions{})
	if err != nil {
		return nil, fmt.Errorf("pulling image %s: %w", svc.Image, err)
	}
	io.Copy(io.Discard, reader)
	reader.Close()

	env := make([]string, 0, len(svc.Env))
	for k, v := range svc.Env {
		env = append(env, k+"="+v)
	}

	port := nat.Port(fmt.Sprintf("%d/tcp", svc.Port))
	resp, err := p.docker.ContainerCreate(ctx, &container.Config{
		Image:        svc.Image,
		Env:          env,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}, &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(svc.Port)}},
		},
	}, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("creating container for %s: %w", svc.Name, err)
	}

	if err := p.docker.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// Container exists but never started; remove it before bailing.
		p.docker.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return nil, fmt.Errorf("starting container for %s: %w", svc.Name, err)
	}

	p.l.Infof(ctx, "Service %s started as container %s", svc.Name, resp.ID[:12])

	return &dockerInstance{
		docker:      p.docker,
		id:          resp.ID,
		addr:        net.JoinHostPort("127.0.0.1", strconv.Itoa(svc.Port)),
		interval:    p.interval,
		maxAttempts: p.maxAttempts,
	}, nil
}

type dockerInstance struct {
	docker      client.APIClient
	id          string
	addr        string
	interval    time.Duration
	maxAttempts int
}

// WaitReady polls the published port on a fixed cadence until it
// accepts a TCP connection, giving up after maxAttempts.
func (i *dockerInstance) WaitReady(ctx context.Context) error {
	return retry.Do(
		func() error {
			conn, err := net.DialTimeout("tcp", i.addr, time.Second)
			if err != nil {
				return err
			}
			conn.Close()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(i.maxAttempts)),
		retry.Delay(i.interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// Teardown removes the container and its volumes.
func (i *dockerInstance) Teardown(ctx context.Context) error {
	return i.docker.ContainerRemove(ctx, i.id, container.RemoveOptions{Force: true, RemoveVolumes: true})
}
