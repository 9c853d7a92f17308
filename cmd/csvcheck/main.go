// Command csvcheck inspects a CRM export before a long enrichment run:
// encoding and BOM, delimiter, presence of the identifier column, and how
// many rows carry a well-formed CNPJ.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"cnpjenrich/cnpj"
	"cnpjenrich/dataset"
)

var utf8bom = []byte{0xEF, 0xBB, 0xBF}

func main() {
	var (
		file   = flag.String("file", "", "CSV file to inspect")
		column = flag.String("column", "cnpj_normalizadoapi", "identifier column name")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("usage: csvcheck -file <path> [-column <name>]")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	head := make([]byte, 4096)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		log.Fatalf("Failed to read: %v", err)
	}
	head = head[:n]

	fmt.Printf("File: %s (%d bytes sampled)\n\n", *file, len(head))

	reportEncoding(head)
	reportDelimiter(head)
	reportTable(*file, *column)
}

func reportEncoding(head []byte) {
	fmt.Println("Encoding:")
	if bytes.HasPrefix(head, utf8bom) {
		fmt.Println("  UTF-8 BOM present (utf-8-sig)")
		head = head[len(utf8bom):]
	} else {
		fmt.Println("  no BOM")
	}
	if utf8.Valid(head) {
		fmt.Println("  valid UTF-8")
		return
	}

	// Legacy CRM exports occasionally come out as Windows-1252.
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), head)
	if err == nil && utf8.Valid(decoded) {
		fmt.Println("  NOT valid UTF-8; decodes as Windows-1252 — re-export as UTF-8 before enriching")
		return
	}
	fmt.Println("  NOT valid UTF-8 and not Windows-1252; inspect manually")
}

func reportDelimiter(head []byte) {
	line := string(head)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	fmt.Println("\nDelimiter (first line):")
	for _, d := range []struct {
		name string
		sep  string
	}{{"semicolon", ";"}, {"comma", ","}, {"tab", "\t"}} {
		fmt.Printf("  %-9s %d\n", d.name, strings.Count(line, d.sep))
	}
}

func reportTable(path, column string) {
	t, err := dataset.ReadCSV(path)
	if err != nil {
		fmt.Printf("\nTable: failed to parse as semicolon CSV: %v\n", err)
		return
	}

	fmt.Printf("\nTable: %d rows, %d columns\n", t.Len(), len(t.Header))
	if !t.HasColumn(column) {
		fmt.Printf("  identifier column %q NOT FOUND; available: %s\n",
			column, strings.Join(t.Header, ", "))
		return
	}

	valid, invalid := 0, 0
	for i := 0; i < t.Len(); i++ {
		if _, ok := cnpj.Normalize(t.Get(i, column)); ok {
			valid++
		} else {
			invalid++
		}
	}
	fmt.Printf("  identifier column %q: %d valid CNPJs, %d invalid/empty\n", column, valid, invalid)
}
