// Command petroidx is a small CLI over the index package: create or open
// an index backed by a heap file, insert rows, run range scans, and
// (via the bench subcommand) measure scan latency across every
// combination of lower- and upper-bound comparison operators.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/petro-db/petroidx/buffer"
	"github.com/petro-db/petroidx/index"
	"github.com/petro-db/petroidx/storage/disk"
	"github.com/petro-db/petroidx/storage/heap"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "create":
		err = cmdCreate(os.Args[2:])
	case "insert":
		err = cmdInsert(os.Args[2:])
	case "scan":
		err = cmdScan(os.Args[2:])
	case "bench":
		err = cmdBench(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "petroidx:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: petroidx <create|insert|scan|bench> [flags]")
}

func parseOperator(s string) (index.Operator, error) {
	switch s {
	case "lt":
		return index.LT, nil
	case "lte":
		return index.LTE, nil
	case "gt":
		return index.GT, nil
	case "gte":
		return index.GTE, nil
	}
	return 0, fmt.Errorf("unrecognized operator %q (want one of lt, lte, gt, gte)", s)
}

// openIndex wires a buffer pool over indexPath and calls index.OpenOrCreate
// against it, optionally bulk-loading from a heap file at heapPath.
func openIndex(indexPath, relation string, attrOffset int32, heapPath string, recordSize int) (*index.Index, *buffer.BufferpoolManager, error) {
	var df *disk.File
	var err error
	if disk.Exists(indexPath) {
		df, err = disk.Open(indexPath)
	} else {
		df, err = disk.Create(indexPath)
	}
	if err != nil {
		return nil, nil, err
	}

	cache, err := buffer.NewDecodeCache(1 << 14)
	if err != nil {
		return nil, nil, err
	}
	bpm := buffer.New(256, 2, df, cache)

	var scanner *heap.Scanner
	if heapPath != "" {
		if recordSize <= 0 {
			return nil, nil, fmt.Errorf("--record-size is required with --heap")
		}
		var hf *heap.File
		if disk.Exists(heapPath) {
			hf, err = heap.Open(heapPath, recordSize)
		} else {
			hf, err = heap.Create(heapPath, recordSize)
		}
		if err != nil {
			return nil, nil, err
		}
		scanner = hf.NewScanner()
	}

	idx, err := index.OpenOrCreate(relation, attrOffset, index.Integer, bpm, scanner)
	if err != nil {
		return nil, nil, err
	}
	return idx, bpm, nil
}

func cmdCreate(args []string) error {
	fs := pflag.NewFlagSet("create", pflag.ExitOnError)
	relation := fs.String("relation", "", "relation name the index is over")
	attrOffset := fs.Int32("attr-offset", 0, "byte offset of the int32 attribute within each record")
	indexPath := fs.String("index", "", "path to the index file")
	heapPath := fs.String("heap", "", "path to a heap file to bulk-load from")
	recordSize := fs.Int("record-size", 0, "fixed record size of the heap file, required with --heap")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *relation == "" || *indexPath == "" {
		return fmt.Errorf("--relation and --index are required")
	}

	idx, _, err := openIndex(*indexPath, *relation, *attrOffset, *heapPath, *recordSize)
	if err != nil {
		return err
	}
	return idx.Close()
}

func cmdInsert(args []string) error {
	fs := pflag.NewFlagSet("insert", pflag.ExitOnError)
	relation := fs.String("relation", "", "relation name the index is over")
	attrOffset := fs.Int32("attr-offset", 0, "byte offset of the int32 attribute within each record")
	indexPath := fs.String("index", "", "path to the index file")
	key := fs.Int32("key", 0, "key to insert")
	ridPage := fs.Uint32("rid-page", 0, "record id page number")
	ridSlot := fs.Uint16("rid-slot", 0, "record id slot number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *relation == "" || *indexPath == "" {
		return fmt.Errorf("--relation and --index are required")
	}

	idx, _, err := openIndex(*indexPath, *relation, *attrOffset, "", 0)
	if err != nil {
		return err
	}

	if err := idx.Insert(*key, index.RecordId{PageNo: *ridPage, SlotNo: *ridSlot}); err != nil {
		_ = idx.Close()
		return err
	}
	return idx.Close()
}

func cmdScan(args []string) error {
	fs := pflag.NewFlagSet("scan", pflag.ExitOnError)
	relation := fs.String("relation", "", "relation name the index is over")
	attrOffset := fs.Int32("attr-offset", 0, "byte offset of the int32 attribute within each record")
	indexPath := fs.String("index", "", "path to the index file")
	low := fs.Int32("low", 0, "low bound of the scan")
	lowOp := fs.String("low-op", "gte", "low bound operator: gt or gte")
	high := fs.Int32("high", 0, "high bound of the scan")
	highOp := fs.String("high-op", "lte", "high bound operator: lt or lte")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *relation == "" || *indexPath == "" {
		return fmt.Errorf("--relation and --index are required")
	}

	lo, err := parseOperator(*lowOp)
	if err != nil {
		return err
	}
	hi, err := parseOperator(*highOp)
	if err != nil {
		return err
	}

	idx, _, err := openIndex(*indexPath, *relation, *attrOffset, "", 0)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.StartScan(*low, lo, *high, hi); err != nil {
		return err
	}
	for {
		rid, err := idx.ScanNext()
		if err != nil {
			break
		}
		fmt.Printf("page=%d slot=%d\n", rid.PageNo, rid.SlotNo)
	}
	return nil
}
