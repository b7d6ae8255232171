package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/powerfleet/api/schedule"
	"github.com/kilianp07/powerfleet/app"
	"github.com/kilianp07/powerfleet/config"
	"github.com/kilianp07/powerfleet/core/factory"
	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/infra/mqtt"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// junitReport is a minimal JUnit XML report so CI systems can display the
// results of the suite.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container already set up with the test
// organisation, bucket and token.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := filepath.Join(t.TempDir(), "mosquitto.conf")
	if err := os.WriteFile(conf, []byte("listener 1883\nallow_anonymous true\n"), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      conf,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func e2eRequest() model.Request {
	return model.Request{
		Depots: []model.Depot{{Location: model.Location{ID: "D", Lat: 31.23, Lng: 121.47}}},
		Tasks: []model.Task{
			{Location: model.Location{ID: "T1", Lat: 31.25, Lng: 121.50}, Start: 2, Duration: 1, Power: 10},
			{Location: model.Location{ID: "T2", Lat: 31.20, Lng: 121.44}, Start: 5, Duration: 2, Power: 15},
		},
		Vehicles: []model.Vehicle{
			{ID: "V1", Power: 20, Energy: 100},
			{ID: "V2", Power: 30, Energy: 60},
		},
	}
}

func waitHealthy(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("service at %s never became healthy", base)
}

// Test_E2E_ScheduleFlow runs the whole service against real brokers: a
// request posted to the API is solved, each route reaches MQTT and the plan
// point lands in InfluxDB.
func Test_E2E_ScheduleFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	started := time.Now()

	influxCont, influxURL := startInflux(ctx, t)
	defer influxCont.Terminate(ctx) //nolint:errcheck
	mqttCont, broker := startMosquitto(ctx, t)
	defer mqttCont.Terminate(ctx) //nolint:errcheck

	routes := make(chan mqtt.RouteMessage, 4)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-fleet"))
	if tok := sub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Skipf("mosquitto not ready: %v", tok.Error())
	}
	defer sub.Disconnect(100)
	if tok := sub.Subscribe(mqtt.DefaultTopicPrefix+"/+/route", 1, func(_ paho.Client, m paho.Message) {
		var msg mqtt.RouteMessage
		if err := json.Unmarshal(m.Payload(), &msg); err == nil {
			routes <- msg
		}
	}); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	cfg := config.Default()
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = broker
	cfg.MQTT.QoS = 1
	cfg.PlanLog.Path = filepath.Join(t.TempDir(), "plans.jsonl")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "influx", Conf: map[string]any{
		"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket,
	}}}
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer svc.Close() //nolint:errcheck

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = svc.Run(runCtx, ln) }()
	base := "http://" + ln.Addr().String()
	waitHealthy(t, base)

	body, _ := json.Marshal(e2eRequest())
	resp, err := http.Post(base+"/api/schedule", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out schedule.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != schedule.StatusSuccess || len(out.Routes) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}

	seen := map[string]bool{}
	for len(seen) < 2 {
		select {
		case msg := <-routes:
			if msg.PlanID != out.PlanID {
				t.Fatalf("route for plan %s, want %s", msg.PlanID, out.PlanID)
			}
			seen[msg.VehicleID] = true
		case <-time.After(10 * time.Second):
			t.Fatalf("received routes for %v only", seen)
		}
	}

	influx := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer influx.Close()
	deadline := time.Now().Add(10 * time.Second)
	for {
		n, err := influx.CountPoints(ctx, "plan")
		if err == nil && n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no plan points in influx (err=%v)", err)
		}
		time.Sleep(200 * time.Millisecond)
	}

	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{
		Name: "Test_E2E_ScheduleFlow",
		Time: time.Since(started).Seconds(),
	}}}
	if err := writeJUnit(filepath.Join(t.TempDir(), "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
