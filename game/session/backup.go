package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/kasuganosora/relicsave/model"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const backupStamp = "20060102T150405.000000000"

// backup copies the on-disk save into the backup directory and rotates old
// copies. A missing source file is not an error.
func (m *Manager) backup(ctx context.Context, s *Session) (string, error) {
	ok, err := afero.Exists(m.fs, s.Path)
	if err != nil || !ok {
		return "", err
	}
	data, err := afero.ReadFile(m.fs, s.Path)
	if err != nil {
		return "", err
	}
	dir := m.cfg.BackupDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(s.Path), "backups")
	}
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(s.Path)
	name := filepath.Join(dir, fmt.Sprintf("%s.%s.bak", base, m.now().UTC().Format(backupStamp)))
	if err := afero.WriteFile(m.fs, name, data, 0o644); err != nil {
		return "", err
	}
	if m.db != nil {
		rec := &model.SaveBackup{SessionID: s.ID, Source: s.Path, Path: name, Size: int64(len(data))}
		if err := m.db.WithContext(ctx).Create(rec).Error; err != nil {
			m.logger.Warn("backup record failed", zap.String("path", name), zap.Error(err))
		}
	}
	m.logger.Info("save backed up", zap.String("source", s.Path), zap.String("backup", name))
	return name, m.rotate(ctx, dir, base)
}

// rotate keeps the newest MaxBackups copies of base. Names sort by time.
func (m *Manager) rotate(ctx context.Context, dir, base string) error {
	if m.cfg.MaxBackups <= 0 {
		return nil
	}
	matches, err := afero.Glob(m.fs, filepath.Join(dir, base+".*.bak"))
	if err != nil {
		return err
	}
	if len(matches) <= m.cfg.MaxBackups {
		return nil
	}
	sort.Strings(matches)
	old := matches[:len(matches)-m.cfg.MaxBackups]
	var errs error
	for _, p := range old {
		errs = multierr.Append(errs, m.fs.Remove(p))
	}
	if m.db != nil {
		errs = multierr.Append(errs, m.db.WithContext(ctx).Where("path IN ?", old).Delete(&model.SaveBackup{}).Error)
	}
	return errs
}

// Backups lists recorded backups of a source file, newest first.
func (m *Manager) Backups(ctx context.Context, source string) ([]model.SaveBackup, error) {
	if m.db == nil {
		return nil, nil
	}
	var out []model.SaveBackup
	err := m.db.WithContext(ctx).Where("source = ?", source).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}
