package mosaicdb

// Writer3D is the write surface of a 3D brick document.
type Writer3D struct {
	doc *Document
}

// AddBrick adds a brick to the document and returns its primary key.
// Validation and transaction semantics match Writer2D.AddTile, with the
// depth axis included.
func (w *Writer3D) AddBrick(coord TileCoordinate, pos *LogicalPosition3D, brickInfo *BrickBaseInfo, dataType DataType, storageType StorageType, data BlobSource) (int64, error) {
	cfg := w.doc.cfg
	if pos == nil || brickInfo == nil {
		return 0, invalidArgumentf("position and brick info are required")
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
	if err := validateFinite("posZ", pos.PosZ); err != nil {
		return 0, err
	}
	if err := validateExtent("width", pos.Width); err != nil {
		return 0, err
	}
	if err := validateExtent("height", pos.Height); err != nil {
		return 0, err
	}
	if err := validateExtent("depth", pos.Depth); err != nil {
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
			int64(brickInfo.PixelWidth),
			int64(brickInfo.PixelHeight),
			int64(brickInfo.PixelDepth),
			int64(brickInfo.PixelType),
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
		infoArgs = append(infoArgs, pos.PosX, pos.PosY, pos.PosZ, pos.Width, pos.Height, pos.Depth, pos.PyramidLevel, tileDataPk)
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
				pos.PosY, pos.PosY+pos.Height,
				pos.PosZ, pos.PosZ+pos.Depth)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pk, nil
}

// BeginTransaction opens the document-level transaction bracketing a
// batch of AddBrick calls. Nesting is rejected.
func (w *Writer3D) BeginTransaction() error {
	return w.doc.conn.beginTransaction()
}

// CommitTransaction commits the pending transaction.
func (w *Writer3D) CommitTransaction() error {
	return w.doc.conn.endTransaction(true)
}

// RollbackTransaction rolls the pending transaction back.
func (w *Writer3D) RollbackTransaction() error {
	return w.doc.conn.endTransaction(false)
}
