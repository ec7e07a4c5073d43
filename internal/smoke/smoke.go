// Package smoke runs end-to-end checks against a live dungeon server.
package smoke

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/dungeongen/internal/directory"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/server"
	"github.com/lawnchairsociety/dungeongen/internal/testclient"
)

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

func pass(name, msg string) TestResult { return TestResult{Name: name, Passed: true, Message: msg} }
func fail(name, msg string) TestResult { return TestResult{Name: name, Passed: false, Message: msg} }

// RunAllTests runs every scenario against the server at serverAddr.
func RunAllTests(serverAddr string) []TestResult {
	scenarios := []func(string) TestResult{
		TestBasicConnection,
		TestEnterExitRoundTrip,
		TestInvalidLevel,
		TestLevelSchedule,
		TestDeterminismAcrossSessions,
		TestChunkBorders,
		TestSpawnIsFloor,
		TestChunkOutOfBounds,
		TestReseed,
	}

	results := make([]TestResult, 0, len(scenarios))
	for _, run := range scenarios {
		results = append(results, run(serverAddr))
	}
	return results
}

// PrintResults prints a summary table
func PrintResults(results []TestResult) {
	passed, failed := 0, 0

	fmt.Println("============================================================")
	fmt.Println("Smoke Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println("------------------------------------------------------------")
}

func TestBasicConnection(addr string) TestResult {
	name := "Basic Connection"

	client, err := testclient.NewTestClient("probe", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	logAction(name, "exit while in town")
	resp, err := client.Exit()
	if err != nil {
		return fail(name, err.Error())
	}
	if resp.OK {
		return fail(name, "exit succeeded outside a dungeon")
	}
	return pass(name, "session answers requests")
}

func TestEnterExitRoundTrip(addr string) TestResult {
	name := "Enter/Exit Round Trip"

	client, err := testclient.NewTestClient("walker", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	logAction(name, "enter level 3 from (100, 50)")
	resp, err := client.Enter(3, 100, 50)
	if err != nil || !resp.OK {
		return fail(name, fmt.Sprintf("enter failed: %v %s", err, resp.Error))
	}

	logAction(name, "exit")
	resp, err = client.Exit()
	if err != nil || !resp.OK {
		return fail(name, fmt.Sprintf("exit failed: %v %s", err, resp.Error))
	}
	if resp.Return.X != 100 || resp.Return.Y != 50 {
		return fail(name, fmt.Sprintf("returned to (%v,%v), want (100,50)", resp.Return.X, resp.Return.Y))
	}
	return pass(name, "return point restored")
}

func TestInvalidLevel(addr string) TestResult {
	name := "Invalid Level"

	client, err := testclient.NewTestClient("lost", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	resp, err := client.Enter(0, 0, 0)
	if err != nil {
		return fail(name, err.Error())
	}
	if resp.OK {
		return fail(name, "level 0 was accepted")
	}
	return pass(name, resp.Error)
}

func TestLevelSchedule(addr string) TestResult {
	name := "Level Schedule"

	client, err := testclient.NewTestClient("scout", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	for level := 1; level <= 8; level++ {
		logAction(name, fmt.Sprintf("enter level %d", level))
		resp, err := client.Enter(level, 0, 0)
		if err != nil || !resp.OK {
			return fail(name, fmt.Sprintf("enter %d failed: %v %s", level, err, resp.Error))
		}
		style, layout := directory.StyleForLevel(level)
		if resp.Level.Style != style.String() || resp.Level.Layout != layout.String() {
			return fail(name, fmt.Sprintf("level %d is %s/%s, want %s/%s",
				level, resp.Level.Style, resp.Level.Layout, style, layout))
		}
	}
	return pass(name, "levels 1-8 follow the style schedule")
}

func TestDeterminismAcrossSessions(addr string) TestResult {
	name := "Determinism Across Sessions"

	a, err := testclient.NewTestClient("alpha", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer a.Close()
	b, err := testclient.NewTestClient("beta", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer b.Close()

	ra, errA := a.Enter(2, 0, 0)
	rb, errB := b.Enter(2, 0, 0)
	if errA != nil || errB != nil || !ra.OK || !rb.OK {
		return fail(name, "enter failed")
	}
	if ra.Level.Fingerprint != rb.Level.Fingerprint {
		return fail(name, "two sessions generated different geometry")
	}

	logAction(name, "compare with HTTP manifest")
	m, err := a.Manifest(2)
	if err != nil {
		return fail(name, err.Error())
	}
	if m.Fingerprint != ra.Level.Fingerprint {
		return fail(name, "HTTP manifest disagrees with websocket session")
	}
	return pass(name, "fingerprint "+shortPrint(m.Fingerprint))
}

func TestChunkBorders(addr string) TestResult {
	name := "Chunk Borders"

	client, err := testclient.NewTestClient("mason", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	resp, err := client.Enter(5, 0, 0)
	if err != nil || !resp.OK {
		return fail(name, "enter failed")
	}
	w, h := resp.Level.WidthInChunks, resp.Level.HeightInChunks
	last := dungeon.ChunkSize - 1

	for cx := 0; cx < w; cx++ {
		for _, cy := range []int{0, h - 1} {
			rows, err := fetchRows(client, cx, cy)
			if err != nil {
				return fail(name, err.Error())
			}
			row := rows[0]
			if cy == h-1 {
				row = rows[last]
			}
			if strings.Trim(row, "#") != "" {
				return fail(name, fmt.Sprintf("chunk (%d,%d) edge row %q is not border", cx, cy, row))
			}
		}
	}
	for cy := 0; cy < h; cy++ {
		for _, cx := range []int{0, w - 1} {
			rows, err := fetchRows(client, cx, cy)
			if err != nil {
				return fail(name, err.Error())
			}
			col := 0
			if cx == w-1 {
				col = last
			}
			for _, row := range rows {
				if row[col] != '#' {
					return fail(name, fmt.Sprintf("chunk (%d,%d) edge column is not border", cx, cy))
				}
			}
		}
	}
	return pass(name, fmt.Sprintf("%dx%d chunk level is enclosed", w, h))
}

func TestSpawnIsFloor(addr string) TestResult {
	name := "Spawn Is Floor"

	client, err := testclient.NewTestClient("settler", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	resp, err := client.Enter(1, 0, 0)
	if err != nil || !resp.OK {
		return fail(name, "enter failed")
	}
	sx, sy := resp.Spawn.Tile.X, resp.Spawn.Tile.Y

	rows, err := fetchRows(client, sx/dungeon.ChunkSize, sy/dungeon.ChunkSize)
	if err != nil {
		return fail(name, err.Error())
	}
	if rows[sy%dungeon.ChunkSize][sx%dungeon.ChunkSize] != '.' {
		return fail(name, fmt.Sprintf("spawn (%d,%d) is not floor", sx, sy))
	}
	return pass(name, fmt.Sprintf("spawn at (%d,%d)", sx, sy))
}

func TestChunkOutOfBounds(addr string) TestResult {
	name := "Chunk Out Of Bounds"

	client, err := testclient.NewTestClient("edge", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	if resp, err := client.Enter(1, 0, 0); err != nil || !resp.OK {
		return fail(name, "enter failed")
	}
	resp, err := client.Chunk(-1, 0)
	if err != nil {
		return fail(name, err.Error())
	}
	if resp.OK {
		return fail(name, "chunk (-1,0) was served")
	}
	return pass(name, resp.Error)
}

func TestReseed(addr string) TestResult {
	name := "Reseed"

	client, err := testclient.NewTestClient("reroller", addr)
	if err != nil {
		return fail(name, err.Error())
	}
	defer client.Close()

	resp, err := client.Do(server.Request{Op: server.OpReseed, Seed: 1234})
	if err != nil || !resp.OK {
		return fail(name, "reseed failed")
	}
	resp, err = client.Enter(1, 0, 0)
	if err != nil || !resp.OK {
		return fail(name, "enter failed")
	}
	if want := directory.SeedForLevel(1234, 1); resp.Level.Seed != want {
		return fail(name, fmt.Sprintf("seed = %d, want %d", resp.Level.Seed, want))
	}
	return pass(name, "new base seed applied")
}

func fetchRows(client *testclient.TestClient, cx, cy int) ([]string, error) {
	resp, err := client.Chunk(cx, cy)
	if err != nil {
		return nil, err
	}
	if !resp.OK || resp.Chunk == nil {
		return nil, fmt.Errorf("chunk (%d,%d): %s", cx, cy, resp.Error)
	}
	return resp.Chunk.Rows, nil
}

func shortPrint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
