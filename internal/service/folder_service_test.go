package service_test

import (
	"context"
	"testing"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderService_CreateFolder(t *testing.T) {
	r := newRoom(t)
	ctx := context.Background()
	owner, viewer := r.user(t, "owner"), r.user(t, "viewer")

	_, err := r.folders.CreateFolder(ctx, owner, model.NewFolder{Name: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	parent := r.folder(t, owner, "Сделка", nil)
	child := r.folder(t, owner, " Юристы ", &parent.ID)
	assert.Equal(t, "Юристы", child.Name)

	r.share(t, owner, model.ResourceFolder, parent.ID, viewer, model.Capabilities{})
	_, err = r.folders.CreateFolder(ctx, viewer, model.NewFolder{Name: "Чужая", ParentID: &parent.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	children, err := r.folders.ListFolders(ctx, owner, &parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	roots, err := r.folders.ListFolders(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, parent.ID, roots[0].ID)
}

func TestFolderService_GetFolder(t *testing.T) {
	r := newRoom(t)
	ctx := context.Background()
	owner, viewer, stranger := r.user(t, "owner"), r.user(t, "viewer"), r.user(t, "stranger")

	folder := r.folder(t, owner, "Отчёты", nil)
	r.share(t, owner, model.ResourceFolder, folder.ID, viewer, model.Capabilities{})

	got, err := r.folders.GetFolder(ctx, viewer, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, got.ID)

	_, err = r.folders.GetFolder(ctx, stranger, folder.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	shared, err := r.folders.ListSharedFolders(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, folder.ID, shared[0].ID)
}

func TestFolderService_MoveRejectsCycles(t *testing.T) {
	r := newRoom(t)
	ctx := context.Background()
	owner := r.user(t, "owner")

	a := r.folder(t, owner, "A", nil)
	b := r.folder(t, owner, "B", &a.ID)
	c := r.folder(t, owner, "C", &b.ID)

	_, err := r.folders.UpdateFolder(ctx, owner, a.ID, model.FolderPatch{ParentID: &c.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = r.folders.UpdateFolder(ctx, owner, a.ID, model.FolderPatch{ParentID: &a.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	moved, err := r.folders.UpdateFolder(ctx, owner, c.ID, model.FolderPatch{ParentID: &a.ID, Name: strPtr("C2")})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)
	assert.Equal(t, "C2", moved.Name)

	root, err := r.folders.UpdateFolder(ctx, owner, b.ID, model.FolderPatch{ClearParent: true})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	// после выноса B в корень перенос A внутрь B допустим
	_, err = r.folders.UpdateFolder(ctx, owner, a.ID, model.FolderPatch{ParentID: &b.ID})
	assert.NoError(t, err)
}

func TestFolderService_MoveRequiresEditOnDestination(t *testing.T) {
	r := newRoom(t)
	ctx := context.Background()
	owner, editor := r.user(t, "owner"), r.user(t, "editor")

	source := r.folder(t, owner, "Входящие", nil)
	target := r.folder(t, owner, "Архив", nil)
	r.share(t, owner, model.ResourceFolder, source.ID, editor, model.Capabilities{CanEdit: true})
	r.share(t, owner, model.ResourceFolder, target.ID, editor, model.Capabilities{})

	_, err := r.folders.UpdateFolder(ctx, editor, source.ID, model.FolderPatch{ParentID: &target.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	renamed, err := r.folders.UpdateFolder(ctx, editor, source.ID, model.FolderPatch{Name: strPtr("Входящие 2024")})
	require.NoError(t, err)
	assert.Equal(t, owner, renamed.OwnerID)
}

func TestFolderService_DeleteDoesNotCascade(t *testing.T) {
	r := newRoom(t)
	ctx := context.Background()
	owner, viewer := r.user(t, "owner"), r.user(t, "viewer")

	parent := r.folder(t, owner, "Родитель", nil)
	child := r.folder(t, owner, "Ребёнок", &parent.ID)
	document := r.document(t, owner, "inside", &parent.ID)
	r.share(t, owner, model.ResourceFolder, parent.ID, viewer, model.Capabilities{})

	assert.ErrorIs(t, r.folders.DeleteFolder(ctx, viewer, parent.ID), apperror.ErrForbidden)
	require.NoError(t, r.folders.DeleteFolder(ctx, owner, parent.ID))

	_, err := r.folders.GetFolder(ctx, owner, parent.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = r.folders.GetFolder(ctx, owner, child.ID)
	assert.NoError(t, err)

	_, err = r.documents.GetDocument(ctx, owner, document.ID)
	assert.NoError(t, err)

	shared, err := r.folders.ListSharedFolders(ctx, viewer)
	require.NoError(t, err)
	assert.Empty(t, shared)
}
