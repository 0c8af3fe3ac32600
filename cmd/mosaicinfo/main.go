package main

/*
# Running
Usage: ./mosaicinfo --database-path /path/to/document.mosaicdb [ --metadata ] [ --debug ]

Prints the document type, declared dimensions, tile counts and bounding
box of a document file; with --metadata the metadata tree is dumped as
well.

# Configuration
Document file path in env var `MOSAICDB_DATABASE_DATABASEPATH`
Example: `export MOSAICDB_DATABASE_DATABASEPATH="/path/to/document.mosaicdb"`

# Logging
Logging to stdout
*/

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mosaicdb/mosaicdb"
	"github.com/mosaicdb/mosaicdb/internal/conf"

	"github.com/pborman/getopt/v2"
	log "github.com/sirupsen/logrus"
)

var flagHelp bool
var flagDebugOn bool
var flagVersion bool
var flagMetadata bool
var flagConfigFilename string
var flagDatabasePath string

func init() {
	initCommandOptions()
}

func initCommandOptions() {
	getopt.FlagLong(&flagHelp, "help", '?', "Show command usage")
	getopt.FlagLong(&flagConfigFilename, "config", 'c', "", "config file name")
	getopt.FlagLong(&flagDebugOn, "debug", 'd', "Set logging level to TRACE")
	getopt.FlagLong(&flagVersion, "version", 'v', "Output the version information")
	getopt.FlagLong(&flagMetadata, "metadata", 'm', "Dump the metadata tree")
	getopt.FlagLong(&flagDatabasePath, "database-path", 0, "", "Path to the document file")
}

func main() {
	getopt.Parse()

	if flagHelp {
		getopt.Usage()
		os.Exit(1)
	}

	if flagVersion {
		fmt.Printf("%s %s\n", conf.AppConfig.Name, conf.AppConfig.Version)
		os.Exit(1)
	}

	conf.InitConfig(flagConfigFilename, flagDebugOn)

	if flagDatabasePath != "" {
		conf.Configuration.Database.DatabasePath = flagDatabasePath
	}
	if conf.Configuration.Database.DatabasePath == "" {
		log.Error("No document file given (use --database-path or MOSAICDB_DATABASE_DATABASEPATH)")
		os.Exit(1)
	}

	if conf.Configuration.Logging.Debug {
		log.SetLevel(log.TraceLevel)
		log.Debugf("Log level = TRACE\n")
	}
	conf.DumpConfig()

	doc, err := mosaicdb.OpenExistingDocument(&mosaicdb.OpenOptions{
		Filename:      conf.Configuration.Database.DatabasePath,
		ReadOnly:      true,
		BlobCacheSize: conf.Configuration.Database.BlobCacheSize,
	})
	if err != nil {
		log.Errorf("Error opening document: %v", err)
		os.Exit(1)
	}
	defer doc.Close()

	if err := printSummary(doc); err != nil {
		log.Errorf("Error reading document: %v", err)
		os.Exit(1)
	}

	if flagMetadata {
		if err := printMetadataTree(doc.MetadataReader(), mosaicdb.MetadataRootPk, ""); err != nil {
			log.Errorf("Error reading metadata: %v", err)
			os.Exit(1)
		}
	}
}

func printSummary(doc *mosaicdb.Document) error {
	fmt.Printf("Document type: %s\n", doc.Type())

	switch doc.Type() {
	case mosaicdb.DocumentTypeImage2D:
		reader, err := doc.Reader2D()
		if err != nil {
			return err
		}
		return printSummary2d(reader)
	case mosaicdb.DocumentTypeImage3D:
		reader, err := doc.Reader3D()
		if err != nil {
			return err
		}
		return printSummary3d(reader)
	default:
		return fmt.Errorf("unsupported document type %v", doc.Type())
	}
}

func printSummary2d(reader *mosaicdb.Reader2D) error {
	dims := reader.GetTileDimensions()
	fmt.Printf("Dimensions: %s\n", dimensionList(dims))

	total, err := reader.GetTotalTileCount()
	if err != nil {
		return err
	}
	fmt.Printf("Total tile count: %d\n", total)

	if err := printLayerCounts(reader.GetTileCountPerLayer); err != nil {
		return err
	}
	if err := printDimensionBounds(dims, reader.GetMinMaxForTileDimension); err != nil {
		return err
	}

	boundsX, boundsY, err := reader.GetTilesBoundingBox()
	if err != nil {
		return err
	}
	if boundsX.IsValid() {
		fmt.Printf("Bounding box: x=[%g,%g] y=[%g,%g]\n",
			boundsX.Minimum, boundsX.Maximum, boundsY.Minimum, boundsY.Maximum)
	} else {
		fmt.Println("Bounding box: (empty document)")
	}
	return nil
}

func printSummary3d(reader *mosaicdb.Reader3D) error {
	dims := reader.GetTileDimensions()
	fmt.Printf("Dimensions: %s\n", dimensionList(dims))

	total, err := reader.GetTotalTileCount()
	if err != nil {
		return err
	}
	fmt.Printf("Total brick count: %d\n", total)

	if err := printLayerCounts(reader.GetTileCountPerLayer); err != nil {
		return err
	}
	if err := printDimensionBounds(dims, reader.GetMinMaxForTileDimension); err != nil {
		return err
	}

	boundsX, boundsY, boundsZ, err := reader.GetBricksBoundingBox()
	if err != nil {
		return err
	}
	if boundsX.IsValid() {
		fmt.Printf("Bounding box: x=[%g,%g] y=[%g,%g] z=[%g,%g]\n",
			boundsX.Minimum, boundsX.Maximum, boundsY.Minimum, boundsY.Maximum, boundsZ.Minimum, boundsZ.Maximum)
	} else {
		fmt.Println("Bounding box: (empty document)")
	}
	return nil
}

func printLayerCounts(countPerLayer func() (map[int]int64, error)) error {
	counts, err := countPerLayer()
	if err != nil {
		return err
	}

	layers := make([]int, 0, len(counts))
	for layer := range counts {
		layers = append(layers, layer)
	}
	sort.Ints(layers)
	for _, layer := range layers {
		fmt.Printf("  pyramid layer %d: %d\n", layer, counts[layer])
	}
	return nil
}

func printDimensionBounds(dims []mosaicdb.Dimension, minMax func([]mosaicdb.Dimension) (map[mosaicdb.Dimension]mosaicdb.Int32Interval, error)) error {
	bounds, err := minMax(dims)
	if err != nil {
		return err
	}
	for _, dim := range dims {
		interval := bounds[dim]
		if interval.IsValid() {
			fmt.Printf("  dimension %c: [%d,%d]\n", byte(dim), interval.Minimum, interval.Maximum)
		} else {
			fmt.Printf("  dimension %c: (no data)\n", byte(dim))
		}
	}
	return nil
}

func dimensionList(dims []mosaicdb.Dimension) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = string(rune(d))
	}
	return strings.Join(parts, ",")
}

func printMetadataTree(reader *mosaicdb.MetadataReader, parentPk int64, indent string) error {
	var childErr error
	err := reader.EnumerateChildren(parentPk, mosaicdb.MetadataItemAll, func(item mosaicdb.MetadataItem) bool {
		fmt.Printf("%s%s = %s\n", indent, item.Name, formatMetadataValue(item.Value))
		if err := printMetadataTree(reader, item.Pk, indent+"  "); err != nil {
			childErr = fmt.Errorf("reading metadata children of %s: %w", item.Name, err)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return childErr
}

func formatMetadataValue(value mosaicdb.MetadataValue) string {
	switch value.Type {
	case mosaicdb.MetadataTypeInt32:
		return fmt.Sprintf("%d", value.IntValue)
	case mosaicdb.MetadataTypeDouble:
		return fmt.Sprintf("%g", value.DoubleValue)
	case mosaicdb.MetadataTypeText:
		return fmt.Sprintf("%q", value.TextValue)
	case mosaicdb.MetadataTypeJson:
		return value.TextValue
	default:
		return "(null)"
	}
}
