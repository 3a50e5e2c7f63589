package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/collapse/internal/api"
	"github.com/san-kum/collapse/internal/collapse"
)

func compactBody() map[string]any {
	return map[string]any{
		"N":         8,
		"R_star_cm": 5e7,
		"rho_break": 1e-3,
		"t_max":     0.03,
	}
}

func postJSON(ts *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	raw, err := json.Marshal(body)
	Expect(err).NotTo(HaveOccurred())

	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	var out map[string]any
	Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
	return resp, out
}

func getJSON(ts *httptest.Server, path string) (*http.Response, map[string]any) {
	resp, err := http.Get(ts.URL + path)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	var out map[string]any
	Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
	return resp, out
}

var _ = Describe("Server", func() {
	var (
		cfg api.Config
		ts  *httptest.Server
	)

	BeforeEach(func() {
		cfg = api.DefaultConfig()
	})

	JustBeforeEach(func() {
		ts = httptest.NewServer(api.New(cfg, nil).Handler())
	})

	AfterEach(func() {
		ts.Close()
	})

	Describe("GET /api/health", func() {
		It("reports ok", func() {
			resp, body := getJSON(ts, "/api/health")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("status", "ok"))
			Expect(body).To(HaveKeyWithValue("version", api.Version))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("GET /api/physics/constants", func() {
		It("keeps SI and CGS apart", func() {
			resp, body := getJSON(ts, "/api/physics/constants")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			si := body["si"].(map[string]any)
			cgs := body["cgs"].(map[string]any)
			Expect(si["G"]).To(BeNumerically("~", 6.6743e-11, 1e-15))
			Expect(si["c"]).To(BeNumerically("==", 299792458))
			Expect(si).To(HaveKey("hbar"))
			Expect(si).To(HaveKey("kB"))
			Expect(cgs["G"]).To(BeNumerically("~", 6.6743e-8, 1e-12))
			Expect(cgs["M_sun"]).To(BeNumerically("~", 1.98847e33, 1e28))
		})
	})

	Describe("POST /api/blackhole/calculate", func() {
		It("computes the solar mass hole", func() {
			resp, body := postJSON(ts, "/api/blackhole/calculate", map[string]any{"mass_solar": 1})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["schwarzschild_radius_m"]).To(BeNumerically("~", 2953.3, 1))
			Expect(body["relative_power"]).To(BeNumerically("==", 1))
		})

		It("defaults to ten solar masses", func() {
			resp, body := postJSON(ts, "/api/blackhole/calculate", map[string]any{})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["mass_solar"]).To(BeNumerically("==", 10))
		})

		It("rejects a non-positive mass", func() {
			resp, body := postJSON(ts, "/api/blackhole/calculate", map[string]any{"mass_solar": -1})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(body["error"]).To(ContainSubstring("positive"))
		})
	})

	Describe("POST /api/particles/spawn-rate", func() {
		It("scales the base rate", func() {
			resp, body := postJSON(ts, "/api/particles/spawn-rate", map[string]any{"mass_solar": 1, "pair_rate_ui": 1})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["spawn_rate_per_second"]).To(BeNumerically("~", 300, 1e-9))
			Expect(body["base_rate"]).To(BeNumerically("==", 300))
		})
	})

	Describe("POST /api/collapse/simulate", func() {
		It("returns the full series", func() {
			resp, body := postJSON(ts, "/api/collapse/simulate", compactBody())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			steps := int(body["steps"].(float64))
			Expect(steps).To(BeNumerically(">", 0))
			for _, key := range []string{"t", "r_min", "M_bh", "M_bh_Msun", "mdot_bh"} {
				Expect(body).To(HaveKey(key))
				Expect(body[key]).To(HaveLen(steps))
			}

			mdot := body["mdot_bh"].([]any)
			Expect(mdot[0]).To(BeNumerically("==", 0))
			Expect(body["events"]).NotTo(BeEmpty())
			Expect(body["metrics"]).To(HaveKey("mass_drift"))
		})

		It("serves the legacy route", func() {
			resp, _ := postJSON(ts, "/simulate_ccsn_bh", compactBody())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("rejects invalid parameters with the field name", func() {
			body := compactBody()
			body["N"] = 0
			resp, out := postJSON(ts, "/api/collapse/simulate", body)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(out).To(HaveKeyWithValue("field", "N"))
		})

		It("rejects malformed JSON", func() {
			resp, err := http.Post(ts.URL+"/api/collapse/simulate", "application/json", strings.NewReader("{"))
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("only accepts POST", func() {
			resp, err := http.Get(ts.URL + "/api/collapse/simulate")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
		})

		Context("with a small work budget", func() {
			BeforeEach(func() {
				cfg.MaxWork = 100
			})

			It("rejects the run", func() {
				resp, out := postJSON(ts, "/api/collapse/simulate", compactBody())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(out["error"]).To(ContainSubstring("exceeds"))
			})
		})

		It("rejects a budget that would overflow steps*N", func() {
			body := map[string]any{
				"N":     1 << 24,
				"dt":    1,
				"t_max": float64(int64(1) << 40),
			}
			resp, out := postJSON(ts, "/api/collapse/simulate", body)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(out).To(HaveKeyWithValue("field", "N"))
			Expect(out["error"]).To(ContainSubstring("exceeds"))
		})

		Context("when the run outlives the timeout", func() {
			BeforeEach(func() {
				cfg.Timeout = time.Nanosecond
			})

			It("answers 504", func() {
				resp, out := postJSON(ts, "/api/collapse/simulate", map[string]any{})
				Expect(resp.StatusCode).To(Equal(http.StatusGatewayTimeout))
				Expect(out["error"]).To(ContainSubstring("exceeded"))
			})
		})
	})

	Describe("GET /api/collapse/stream", func() {
		dial := func(query url.Values) *websocket.Conn {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/collapse/stream?" + query.Encode()
			conn, _, err := websocket.Dial(ctx, u, nil)
			Expect(err).NotTo(HaveOccurred())
			return conn
		}

		compactQuery := func() url.Values {
			q := url.Values{}
			for k, v := range compactBody() {
				q.Set(k, fmt.Sprint(v))
			}
			return q
		}

		It("streams snapshots then a done message", func() {
			q := compactQuery()
			q.Set("every", "50")
			conn := dial(q)
			defer conn.CloseNow()

			p, err := api.ParamsFromQuery(q)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			var snapshots, events int
			var done api.StreamMessage
			for {
				var msg api.StreamMessage
				Expect(wsjson.Read(ctx, conn, &msg)).To(Succeed())
				if msg.Type == api.MessageDone {
					done = msg
					break
				}
				switch msg.Type {
				case api.MessageSnapshot:
					Expect(msg.Snapshot).NotTo(BeNil())
					snapshots++
				case api.MessageEvent:
					events++
				}
			}

			Expect(snapshots).To(BeNumerically(">=", p.Steps()/50))
			Expect(events).To(BeNumerically(">", 0))
			Expect(done.Steps).To(Equal(p.Steps()))
			Expect(done.Events).To(HaveLen(events))
			Expect(done.Metrics).To(HaveKey("peak_mdot"))
		})

		It("rejects invalid parameters before upgrading", func() {
			resp, err := http.Get(ts.URL + "/api/collapse/stream?N=abc")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			resp, err = http.Get(ts.URL + "/api/collapse/stream?every=0")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})
})

var _ = Describe("ParamsFromQuery", func() {
	It("overlays values on the defaults", func() {
		p, err := api.ParamsFromQuery(url.Values{"N": {"16"}, "alpha": {"0"}})
		Expect(err).NotTo(HaveOccurred())

		want := collapse.DefaultParams()
		want.Shells = 16
		want.Alpha = 0
		Expect(p).To(Equal(want))
	})

	It("reports the bad field", func() {
		_, err := api.ParamsFromQuery(url.Values{"dt": {"fast"}})
		Expect(err).To(MatchError(ContainSubstring("dt")))
	})
})
