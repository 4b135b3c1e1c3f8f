//go:build ignore

// Analyze-captures decodes link packet captures with the protocol package.
//
// Input is a text file with one hex-encoded packet per line (byte-stuffed,
// as seen on the wire), or a directory of such files. Lines starting with
// '#' are skipped. For each packet the tool prints the frame header, the
// request or response interpretation by transaction number, and finishes
// with parse statistics.
//
// Usage: go run tools/analyze-captures.go <file-or-directory>
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muurk/aquaclean/internal/protocol"
)

// Statistics tracks decoding results across all input files
type Statistics struct {
	TotalPackets int
	TotalFiles   int
	DecodeOK     int
	DecodeFailed int
	Kinds        map[protocol.FrameKind]int
	Transactions map[byte]int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze-captures <file-or-directory>")
		fmt.Println("Example: analyze-captures captures/session-20260826.hex")
		os.Exit(1)
	}

	stats := &Statistics{
		Kinds:        make(map[protocol.FrameKind]int),
		Transactions: make(map[byte]int),
	}

	target := os.Args[1]
	info, err := os.Stat(target)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(target)
		if err != nil {
			fmt.Printf("Error reading directory: %v\n", err)
			os.Exit(1)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			analyzeFile(filepath.Join(target, entry.Name()), stats)
		}
	} else {
		analyzeFile(target, stats)
	}

	printStatistics(stats)
}

func analyzeFile(filename string, stats *Statistics) {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Printf("Error opening %s: %v\n", filename, err)
		return
	}
	defer f.Close()

	stats.TotalFiles++
	fmt.Printf("=== %s ===\n\n", filename)

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		packet, err := hex.DecodeString(strings.ReplaceAll(line, " ", ""))
		if err != nil {
			fmt.Printf("line %d: not hex: %v\n", lineNum, err)
			stats.DecodeFailed++
			continue
		}

		stats.TotalPackets++
		analyzePacket(lineNum, packet, stats)
	}
	if err := scanner.Err(); err != nil {
		fmt.Printf("Error reading %s: %v\n", filename, err)
	}
}

func analyzePacket(lineNum int, packet []byte, stats *Statistics) {
	frame, err := protocol.DecodeFrame(packet)
	if err != nil {
		fmt.Printf("line %d: % X\n  DECODE FAILED: %v\n\n", lineNum, packet, err)
		stats.DecodeFailed++
		return
	}

	stats.DecodeOK++
	stats.Kinds[frame.Kind]++
	stats.Transactions[frame.Transaction]++

	fmt.Printf("line %d: % X\n", lineNum, packet)
	fmt.Printf("  %s\n", frame)
	fmt.Printf("  payload: % X\n", frame.Payload)
	if meaning := interpret(frame); meaning != "" {
		fmt.Printf("  meaning: %s\n", meaning)
	}
	fmt.Println()
}

// interpret guesses the application meaning of a frame from its
// transaction number. Responses and requests share numbers, so both
// readings are shown where they differ.
func interpret(frame *protocol.Frame) string {
	p := frame.Payload
	switch frame.Transaction {
	case 0:
		if len(p) == 2 {
			return fmt.Sprintf("command request: %s", protocol.Command(binary.LittleEndian.Uint16(p)))
		}
		return "command acknowledgment"
	case 1:
		if len(p) == 3 && p[2] == 0x00 {
			return fmt.Sprintf("read request: %s", pointName(p))
		}
		return fmt.Sprintf("read response, %d value bytes", len(p))
	case 2:
		if len(p) >= 4 && p[2] == 0x01 {
			return fmt.Sprintf("write request: %s = % X", pointName(p), p[3:])
		}
		return "write acknowledgment"
	case 3:
		if len(p) == 12 {
			return "device info request"
		}
		ident := protocol.ParseDeviceIdentification(p)
		return fmt.Sprintf("identification: %s / %s / %s", ident.SAPNumber, ident.SerialNumber, ident.FirmwareVersion)
	case 4:
		if len(p) == 12 {
			return "system status request"
		}
		params := protocol.ParseSystemParameters(p)
		return fmt.Sprintf("status: anal=%v lady=%v dryer=%v sitting=%v descale=%v maint=%v",
			params.AnalShowerRunning, params.LadyShowerRunning, params.DryerRunning,
			params.UserIsSitting, params.DescalingNeeded, params.MaintenanceNeeded)
	}
	return ""
}

func pointName(p []byte) string {
	dp := protocol.DataPoint(binary.LittleEndian.Uint16(p[0:2]))
	if info, ok := dp.Lookup(); ok {
		return fmt.Sprintf("%s (%d)", info.Name, dp)
	}
	return fmt.Sprintf("data point %d", dp)
}

func printStatistics(stats *Statistics) {
	fmt.Println("=== Statistics ===")
	fmt.Printf("Files:           %d\n", stats.TotalFiles)
	fmt.Printf("Packets:         %d\n", stats.TotalPackets)
	fmt.Printf("Decoded:         %d\n", stats.DecodeOK)
	fmt.Printf("Failed:          %d\n", stats.DecodeFailed)

	if len(stats.Kinds) > 0 {
		fmt.Println("\nFrame kinds:")
		for kind, count := range stats.Kinds {
			fmt.Printf("  %-12s %d\n", kind, count)
		}
	}
	if len(stats.Transactions) > 0 {
		fmt.Println("\nTransactions:")
		for txn := byte(0); txn <= protocol.MaxTransaction; txn++ {
			if count := stats.Transactions[txn]; count > 0 {
				fmt.Printf("  txn %d: %d\n", txn, count)
			}
		}
	}
}
