package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/brensch/snek-arcade/game"
	"github.com/brensch/snek-arcade/store"
	"github.com/brensch/snek-arcade/tui"
)

func main() {
	recordDir := flag.String("record-dir", "recordings", "Directory snek writes recordings to")
	gameID := flag.String("game", "", "Game id to replay (default: most recently logged game)")
	boards := flag.Bool("boards", false, "Draw the board for every turn")
	delay := flag.Duration("delay", 0, "Pause between turns when drawing boards")
	flag.Parse()

	path := flag.Arg(0)
	if path == "" {
		id := *gameID
		if id == "" {
			var err error
			id, err = latestGame(*recordDir)
			if err != nil {
				log.Fatalf("Failed to find a recording: %v", err)
			}
		}
		path = filepath.Join(*recordDir, id+".parquet")
	}

	rows, err := store.ReadTurns(path)
	if err != nil {
		log.Fatalf("Failed to read recording: %v", err)
	}
	if len(rows) == 0 {
		log.Fatalf("Recording %s is empty", path)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RecordedNs < rows[j].RecordedNs })

	log.Printf("Replaying %s: %d rows", rows[0].GameID, len(rows))

	styles := tui.DefaultStyles()
	for _, row := range rows {
		fmt.Printf("  Turn %3d | len %3d | %-5s | score %3d | level %d | %s\n",
			row.Turn, len(row.SnakeX), row.Direction, row.Score, row.Level, row.Status)
		if *boards {
			fmt.Println(tui.Board(snapshotOf(row), styles))
			if *delay > 0 {
				time.Sleep(*delay)
			}
		}
	}

	last := rows[len(rows)-1]
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("  Game:     %s\n", last.GameID)
	fmt.Printf("  Turns:    %d\n", last.Turn)
	fmt.Printf("  Score:    %d (high %d)\n", last.Score, last.HighScore)
	fmt.Printf("  Power-Ups Collected: %d\n", last.PowerUpCount)
	fmt.Println("═══════════════════════════════════════════════════════════════")
}

func latestGame(dir string) (string, error) {
	ids, err := store.ReadSessionLog(filepath.Join(dir, store.SessionLogName))
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no games logged in %s", dir)
	}
	return ids[len(ids)-1], nil
}

func snapshotOf(row store.TurnRow) game.Snapshot {
	return game.Snapshot{
		Width:        int(row.Width),
		Height:       int(row.Height),
		CellSize:     int(row.CellSize),
		Snake:        row.Snake(),
		HasFood:      row.HasFood,
		Food:         game.Point{X: int(row.FoodX), Y: int(row.FoodY)},
		HasPowerUp:   row.HasPowerUp,
		PowerUp:      game.Point{X: int(row.PowerUpX), Y: int(row.PowerUpY)},
		Score:        int(row.Score),
		HighScore:    int(row.HighScore),
		Level:        int(row.Level),
		PowerUpCount: int(row.PowerUpCount),
		Turn:         int(row.Turn),
		Difficulty:   game.DifficultyLabel(int(row.Level)),
	}
}
