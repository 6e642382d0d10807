//go:build e2e
// +build e2e

package e2e_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/jsphweid/rhythmdrill/cmd"
	"github.com/jsphweid/rhythmdrill/midi"
	"github.com/jsphweid/rhythmdrill/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var server *httptest.Server

func TestMain(m *testing.M) {
	server = httptest.NewServer(cmd.NewServer(store.New(16), log.New(io.Discard), 4).Handler())
	exitVal := m.Run()
	server.Close()
	os.Exit(exitVal)
}

type created struct {
	ID        string    `json:"id"`
	NoteBeats []float64 `json:"noteBeats"`
}

func createExercise(t *testing.T, body string) created {
	resp, err := http.Post(server.URL+"/exercises", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var c created
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&c))
	return c
}

func TestExportMatchesExerciseE2E(t *testing.T) {
	ex := createExercise(t, `{"measures":8,"timeSignatures":["2/4","5/4","7/8"],"restPercent":40,
		"allowTriplets":true,"allowQuintuplets":true,"allowSextuplets":true,"seed":2024}`)

	resp, err := http.Get(server.URL + "/exercises/" + ex.ID + "/midi?metronome=false")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	s, err := midi.ReadMidi(body)
	require.NoError(t, err)
	onsets := midi.Onsets(s)
	require.Len(t, onsets, len(ex.NoteBeats))
	for i, o := range onsets {
		assert.InDelta(t, ex.NoteBeats[i], o.Beat, 1.0/960)
	}
}

func TestPlayRunsToTheEndE2E(t *testing.T) {
	ex := createExercise(t, `{"measures":1,"timeSignatures":["2/4"],"tempoBpm":220,"metronome":true,"seed":1}`)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/exercises/" + ex.ID + "/play"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.WriteJSON(map[string]string{"op": "play"}))

	clicks := map[float64]int{}
	var lastBeat float64
	deadline := time.Now().Add(10 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var m struct {
			Type     string `json:"type"`
			State    string `json:"state"`
			Beat     float64
			Emission *struct {
				Kind string  `json:"kind"`
				Beat float64 `json:"beat"`
			} `json:"emission"`
		}
		require.NoError(t, conn.ReadJSON(&m))
		switch m.Type {
		case "emission":
			if m.Emission.Kind != "note" {
				clicks[m.Emission.Beat]++
			}
		case "position":
			assert.GreaterOrEqual(t, m.Beat, lastBeat)
			lastBeat = m.Beat
		case "state":
			if m.State == "stopped" && len(clicks) > 0 {
				assert.Equal(t, map[float64]int{-2: 1, -1: 1, 0: 1, 1: 1}, clicks)
				return
			}
		}
	}
}
