package tds

import "github.com/cockroachdb/errors"

// ===========================================================================
// CEK TABLE
// ===========================================================================
//
// CekTable layout:
//   EkValueCount  uint16
//   DatabaseId    uint32
//   CekId         uint32
//   CekVersion    uint32
//   CekMDVersion  uint64
//   Count         uint8
//   Values        Count x (EncryptedKey US-var-byte, KeyStoreName B-var-char,
//                          KeyPath US-var-char, AsymmetricAlgo B-var-char)
//
// Exactly one EK_INFO block is decoded per table, whatever EkValueCount says.
//
// ===========================================================================

// stepCekTable decodes the table header, then one key value per call, then
// validates the table before any column is read
func (d *ColMetadataDecoder) stepCekTable(r *Reader) error {
	if d.stage == stageCekTable {
		t, err := readCekTableHeader(r)
		if err != nil {
			return err
		}
		d.cekTable = t
		d.stage = stageCekValues
		return nil
	}

	info := &d.cekTable.KeyInfo
	if len(info.Values) < int(info.Count) {
		v, err := readEncryptionKeyValue(r)
		if err != nil {
			return err
		}
		info.Values = append(info.Values, v)
		return nil
	}

	if err := d.cekTable.Validate(); err != nil {
		return err
	}
	d.emit(EventCekTable, d.cekTable)
	d.stage = d.nextColumnStage()
	return nil
}

// readCekTableHeader reads EkValueCount and the fixed EK_INFO fields
func readCekTableHeader(r *Reader) (*CekTableMetadata, error) {
	var t CekTableMetadata
	var err error
	if t.EkValueCount, err = r.ReadUint16LE(); err != nil {
		return nil, err
	}

	k := &t.KeyInfo
	if k.DatabaseID, err = r.ReadUint32LE(); err != nil {
		return nil, err
	}
	if k.CekID, err = r.ReadUint32LE(); err != nil {
		return nil, err
	}
	if k.CekVersion, err = r.ReadUint32LE(); err != nil {
		return nil, err
	}
	if k.CekMDVersion, err = r.ReadUint64LE(); err != nil {
		return nil, err
	}
	if k.Count, err = r.ReadUint8(); err != nil {
		return nil, err
	}
	k.Values = make([]EncryptionKeyValue, 0, k.Count)
	return &t, nil
}

func readEncryptionKeyValue(r *Reader) (EncryptionKeyValue, error) {
	var v EncryptionKeyValue
	var err error
	if v.EncryptedKey, err = r.ReadUsVarByte(); err != nil {
		return EncryptionKeyValue{}, err
	}
	if v.KeyStoreName, err = r.ReadBVarChar(); err != nil {
		return EncryptionKeyValue{}, err
	}
	if v.KeyPath, err = r.ReadUsVarChar(); err != nil {
		return EncryptionKeyValue{}, err
	}
	if v.AsymmetricAlgo, err = r.ReadBVarChar(); err != nil {
		return EncryptionKeyValue{}, err
	}
	return v, nil
}

// Validate checks that the table describes a usable column encryption key:
// EkValueCount and every numeric EK_INFO field must be non-zero
func (t *CekTableMetadata) Validate() error {
	k := t.KeyInfo
	if t.EkValueCount == 0 || k.Count == 0 || k.DatabaseID == 0 || k.CekID == 0 ||
		k.CekMDVersion == 0 || k.CekVersion == 0 {
		return errors.Wrapf(ErrMalformedAlwaysEncryptedTable,
			"ek_value_count=%d count=%d database_id=%d cek_id=%d cek_md_version=%d cek_version=%d",
			t.EkValueCount, k.Count, k.DatabaseID, k.CekID, k.CekMDVersion, k.CekVersion)
	}
	return nil
}
