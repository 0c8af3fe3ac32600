package mosaicdb

// Writer2D is the write surface of a 2D tile document.
type Writer2D struct {
	doc *Document
}

// AddTile adds a tile to the document and returns its primary key. The
// coordinate must cover the declared dimensions exactly; position
// extents must be finite and non-negative. The payload bytes are copied
// before the call returns.
//
// The blob, tile-data, tile-info and spatial-index rows are written
// atomically: inside the caller's pending transaction when there is one,
// otherwise inside an implicit per-call transaction.
func (w *Writer2D) AddTile(coord TileCoordinate, pos *LogicalPosition, tileInfo *TileBaseInfo, dataType DataType, storageType StorageType, data BlobSource) (int64, error) {
	cfg := w.doc.cfg
	if pos == nil || tileInfo == nil {
		return 0, invalidArgumentf("position and tile info are required")
	}
	if err := validateCoordinate(coord, cfg); err != nil {
		return 0, err
	}
	if err := validateFinite("posX", pos.PosX); err != nil {
		return 0, err
	}
	if err := validateFinite("posY", pos.PosY); err != nil {
		return 0, err
	}
	if err := validateExtent("width", pos.Width); err != nil {
		return 0, err
	}
	if err := validateExtent("height", pos.Height); err != nil {
		return 0, err
	}
	if err := validateStorage(dataType, storageType, data, cfg); err != nil {
		return 0, err
	}

	var pk int64
	err := runInTransaction(w.doc.conn, func() error {
		blobPk, hasBlob, err := insertBlob(w.doc.conn, cfg, dataType, data)
		if err != nil {
			return err
		}

		dataArgs := []interface{}{
			int64(tileInfo.PixelWidth),
			int64(tileInfo.PixelHeight),
			int64(tileInfo.PixelType),
			int64(dataType),
			int64(storageType),
		}
		if hasBlob {
			dataArgs = append(dataArgs, blobPk)
		} else {
			dataArgs = append(dataArgs, nil)
		}
		tileDataPk, err := w.doc.conn.execReturningRowID(sqlInsertTilesData(cfg), dataArgs...)
		if err != nil {
			return err
		}

		infoArgs := coordinateValues(coord, cfg)
		infoArgs = append(infoArgs, pos.PosX, pos.PosY, pos.Width, pos.Height, pos.PyramidLevel, tileDataPk)
		pk, err = w.doc.conn.execReturningRowID(sqlInsertTilesInfo(cfg), infoArgs...)
		if err != nil {
			return err
		}

		if cfg.UseSpatialIndex() {
			stmt, err := sqlInsertSpatialRow(cfg)
			if err != nil {
				return err
			}
			return w.doc.conn.exec(stmt, pk,
				pos.PosX, pos.PosX+pos.Width,
				pos.PosY, pos.PosY+pos.Height)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pk, nil
}

// BeginTransaction opens the document-level transaction bracketing a
// batch of AddTile calls. Nesting is rejected.
func (w *Writer2D) BeginTransaction() error {
	return w.doc.conn.beginTransaction()
}

// CommitTransaction commits the pending transaction.
func (w *Writer2D) CommitTransaction() error {
	return w.doc.conn.endTransaction(true)
}

// RollbackTransaction rolls the pending transaction back.
func (w *Writer2D) RollbackTransaction() error {
	return w.doc.conn.endTransaction(false)
}
