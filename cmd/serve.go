package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/subcommands"
	"github.com/gorilla/mux"
	"github.com/wsoa/arena"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the leaderboard over HTTP" }
func (*serveCmd) Usage() string {
	return `wsoa serve [-addr <host:port>]

  Serves the read-only query surface as JSON:

    GET /api/agents                  list registered signatures
    GET /api/leaderboard?sort=<key>  ranked agent summaries
    GET /api/agents/{signature}      one agent's metrics, equity and trades

  Ledgers and the archive are re-read per request, so a running server
  always reflects the latest appends.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", ":8080", "Address to listen on.")
}

func (c *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r := mux.NewRouter()
	r.HandleFunc("/api/agents", c.listAgents).Methods(http.MethodGet)
	r.HandleFunc("/api/leaderboard", c.leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/agents/{signature}", c.agentDetail).Methods(http.MethodGet)

	log.Printf("listening on %s", c.addr)
	if err := http.ListenAndServe(c.addr, r); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (c *serveCmd) listAgents(w http.ResponseWriter, _ *http.Request) {
	sigs, err := Store().Signatures()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sigs == nil {
		sigs = []string{}
	}
	writeJSON(w, http.StatusOK, sigs)
}

func (c *serveCmd) leaderboard(w http.ResponseWriter, r *http.Request) {
	key, err := arena.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	archive, err := Archive()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	rows, err := arena.BuildLeaderboard(Store(), archive, key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (c *serveCmd) agentDetail(w http.ResponseWriter, r *http.Request) {
	archive, err := Archive()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	detail, err := arena.Detail(Store(), archive, mux.Vars(r)["signature"])
	if err != nil {
		if errors.Is(err, arena.ErrUnknownAgent) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
