package tds

// ===========================================================================
// COLUMN ASSEMBLY
// ===========================================================================
//
// ColumnData layout:
//   BaseMetadata    delegated to the MetadataDecoder
//   TableName       text/ntext/image only:
//                     >=7.2: uint8 part count, then parts x US-var-char
//                     <7.2:  one US-var-char
//   CryptoMetadata  encrypted columns only, when Always Encrypted is enabled
//   ColumnName      B-var-char
//
// The fields are unframed, so this order is fixed.
//
// ===========================================================================

// stepColumn runs the column stage the decoder is positioned at
func (d *ColMetadataDecoder) stepColumn(r *Reader) error {
	switch d.stage {
	case stageColumnBase:
		m, err := d.opts.metadataDecoder().DecodeMetadata(r, d.opts)
		if err != nil {
			return err
		}
		d.column = ColumnMetadata{Metadata: m}
		d.stage = stageTableName

	case stageTableName:
		return d.stepTableName(r)

	case stageTableNameParts:
		tn := d.column.TableName
		if len(tn.Parts) < d.partCount {
			part, err := r.ReadUsVarChar()
			if err != nil {
				return err
			}
			tn.Parts = append(tn.Parts, part)
			return nil
		}
		d.stage = stageCryptoMetadata

	case stageCryptoMetadata:
		cm, err := readCryptoMetadata(r, d.opts, d.column.Metadata)
		if err != nil {
			return err
		}
		d.column.CryptoMetadata = cm
		d.stage = stageColumnName

	case stageColumnName:
		name, err := readColumnName(r, d.opts, len(d.columns), d.column.Metadata)
		if err != nil {
			return err
		}
		d.column.ColName = name
		d.columns = append(d.columns, d.column)
		d.emit(EventColumn, d.column)
		d.column = ColumnMetadata{}
		d.stage = d.nextColumnStage()
	}
	return nil
}

// stepTableName decodes the table name header. Multi-part names continue in
// stageTableNameParts one part at a time.
func (d *ColMetadataDecoder) stepTableName(r *Reader) error {
	if d.column.Type == nil || !d.column.Type.HasTableName {
		d.stage = stageCryptoMetadata
		return nil
	}

	if !d.opts.TDSVersion.AtLeast7_2() {
		name, err := r.ReadUsVarChar()
		if err != nil {
			return err
		}
		d.column.TableName = &TableName{Parts: []string{name}}
		d.stage = stageCryptoMetadata
		return nil
	}

	n, err := r.ReadUint8()
	if err != nil {
		return err
	}
	d.partCount = int(n)
	d.column.TableName = &TableName{Parts: make([]string, 0, n), Multipart: true}
	d.stage = stageTableNameParts
	return nil
}

// readCryptoMetadata returns nil without reading unless the column carries
// the encrypted flag and encryption is enabled for the session
func readCryptoMetadata(r *Reader, opts Options, m Metadata) (*CryptoMetadata, error) {
	if !opts.AlwaysEncrypted || !m.Encrypted() {
		return nil, nil
	}

	var cm CryptoMetadata
	var err error
	if cm.Ordinal, err = r.ReadUint16LE(); err != nil {
		return nil, err
	}

	if opts.TDSVersion.AtLeast7_2() {
		if cm.UserType, err = r.ReadUint32LE(); err != nil {
			return nil, err
		}
	} else {
		userType, err := r.ReadUint16LE()
		if err != nil {
			return nil, err
		}
		cm.UserType = uint32(userType)
	}

	if cm.BaseTypeInfo, err = opts.metadataDecoder().DecodeTypeInfo(r, opts); err != nil {
		return nil, err
	}

	if cm.EncryptionAlgo, err = r.ReadUint8(); err != nil {
		return nil, err
	}
	// 0 names a custom algorithm; any other id is AEAD_AES_256_CBC_HMAC_SHA256
	if cm.EncryptionAlgo == 0 {
		if cm.AlgoName, err = r.ReadBVarChar(); err != nil {
			return nil, err
		}
	} else {
		cm.AlgoName = UndefinedAlgoName
	}

	if cm.EncryptionAlgoType, err = r.ReadUint8(); err != nil {
		return nil, err
	}
	if cm.NormVersion, err = r.ReadUint8(); err != nil {
		return nil, err
	}
	return &cm, nil
}

func readColumnName(r *Reader, opts Options, index int, m Metadata) (string, error) {
	name, err := r.ReadBVarChar()
	if err != nil {
		return "", err
	}
	return renameColumn(name, index, m, opts), nil
}

// renameColumn applies the replacer if set, else camel casing if enabled
func renameColumn(name string, index int, m Metadata, opts Options) string {
	switch {
	case opts.ColumnNameReplacer != nil:
		return opts.ColumnNameReplacer(name, index, m)
	case opts.CamelCaseColumns:
		return CamelCase(name)
	default:
		return name
	}
}

// CamelCase lower-cases a leading ASCII capital and leaves the rest alone
func CamelCase(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]+('a'-'A')) + s[1:]
}
