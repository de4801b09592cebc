// Serve a read-only JSON view of the snapshot ledger
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spysats/spysats/internal/database"
	"github.com/spysats/spysats/internal/env"
	"github.com/spysats/spysats/internal/model"
)

type boardServer struct {
	conn *database.Conn
}

func writeJSON(writer http.ResponseWriter, data any) {
	writer.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(data); err != nil {
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (server *boardServer) handleSnapshotList(writer http.ResponseWriter, request *http.Request) {
	ticker := mux.Vars(request)["ticker"]
	var snapshotList []model.Snapshot

	err := model.LoadList(
		server.conn,
		&snapshotList,
		100,
		func(row database.Row, snapshot *model.Snapshot) error {
			return row.Scan(
				&snapshot.ID,
				&snapshot.AssetID,
				&snapshot.Price,
				&snapshot.PriceSats,
				&snapshot.Timestamp,
			)
		},
		`SELECT price_history.id, asset_id, price, price_sats, timestamp
		FROM price_history
		INNER JOIN asset ON asset.id = price_history.asset_id
		WHERE asset.ticker = $1
		ORDER BY timestamp DESC, price_history.id DESC
		LIMIT 100`,
		ticker,
	)

	if err != nil {
		http.Error(writer, "database error", http.StatusInternalServerError)

		return
	}

	writeJSON(writer, snapshotList)
}

type announcementView struct {
	ID         int       `json:"id"`
	ExternalID string    `json:"external_id"`
	Timestamp  time.Time `json:"timestamp"`
	Content    string    `json:"content"`
}

func (server *boardServer) handleAnnouncementList(writer http.ResponseWriter, request *http.Request) {
	var announcementList []announcementView

	err := model.LoadList(
		server.conn,
		&announcementList,
		50,
		func(row database.Row, announcement *announcementView) error {
			return row.Scan(
				&announcement.ID,
				&announcement.ExternalID,
				&announcement.Timestamp,
				&announcement.Content,
			)
		},
		`SELECT id, COALESCE(external_id, ''), timestamp, content
		FROM announcement
		ORDER BY timestamp DESC, id DESC
		LIMIT 50`,
	)

	if err != nil {
		http.Error(writer, "database error", http.StatusInternalServerError)

		return
	}

	writeJSON(writer, announcementList)
}

func main() {
	env.LoadEnvironmentVariables()

	conn, err := database.Connect()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = conn.Close()
	}()

	board := &boardServer{conn: conn}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/snapshot/{ticker}", board.handleSnapshotList).Methods("GET")
	router.HandleFunc("/announcement", board.handleAnnouncementList).Methods("GET")

	// TODO: Make port configurable
	server := http.Server{
		Addr:    ":8000",
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %s \n", err)
		}
	}()

	log.Println("Server started")
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shut down failed: %+v", err)
	}

	log.Println("Server shut down successfully")
}
