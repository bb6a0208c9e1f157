package service

import (
	"errors"
	"testing"
	"time"

	"needledrop/internal/domain"
)

func TestCreateAlbum(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)

	album, err := svc.Create(CreateAlbumRequest{
		Title:       "OK Computer",
		Artist:      "Radiohead",
		ReleaseYear: 1997,
		Genre:       "Alternative Rock",
	}, user.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if album.ID == 0 {
		t.Error("expected a generated id")
	}
	if album.CreatedBy.Username != "user" {
		t.Errorf("createdBy username = %q, want %q", album.CreatedBy.Username, "user")
	}
	if !album.CreatedAt.Equal(album.UpdatedAt) {
		t.Errorf("fresh album should have createdAt == updatedAt, got %v and %v", album.CreatedAt, album.UpdatedAt)
	}

	got, err := svc.GetByID(album.ID)
	if err != nil {
		t.Fatalf("GetByID after create: %v", err)
	}
	if got.Title != "OK Computer" || got.Artist != "Radiohead" || got.ReleaseYear != 1997 {
		t.Errorf("persisted album = %q/%q/%d, want OK Computer/Radiohead/1997", got.Title, got.Artist, got.ReleaseYear)
	}
	if got.CreatedBy.ID != user.ID {
		t.Errorf("persisted owner id = %d, want %d", got.CreatedBy.ID, user.ID)
	}
}

func TestCreateAlbumUnknownUser(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)

	if _, err := svc.Create(CreateAlbumRequest{Title: "x", Artist: "y", ReleaseYear: 2000}, 12345); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Create with unknown user = %v, want ErrUserNotFound", err)
	}
	var n int64
	if err := db.Model(&domain.Album{}).Count(&n).Error; err != nil {
		t.Fatalf("count albums: %v", err)
	}
	if n != 0 {
		t.Errorf("store has %d albums after failed create, want 0", n)
	}
}

func TestUpdateAlbumMergePatch(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	album, err := svc.Create(CreateAlbumRequest{Title: "OK Computer", Artist: "Radiohead", ReleaseYear: 1997, Genre: "Alternative Rock"}, user.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(20 * time.Millisecond) // so updatedAt is observably later
	genre := "Rock"
	updated, err := svc.Update(album.ID, UpdateAlbumRequest{Genre: &genre}, user.ID)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Genre != "Rock" {
		t.Errorf("genre = %q, want %q", updated.Genre, "Rock")
	}
	if updated.Title != "OK Computer" || updated.Artist != "Radiohead" || updated.ReleaseYear != 1997 {
		t.Errorf("untouched fields changed: %q/%q/%d", updated.Title, updated.Artist, updated.ReleaseYear)
	}
	if !updated.UpdatedAt.After(album.CreatedAt) {
		t.Errorf("updatedAt %v should be after createdAt %v", updated.UpdatedAt, album.CreatedAt)
	}

	got, err := svc.GetByID(album.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Genre != "Rock" || got.Title != "OK Computer" {
		t.Errorf("persisted patch = %q/%q, want Rock/OK Computer", got.Genre, got.Title)
	}
}

func TestUpdateAlbumEmptyPatchStillStampsUpdatedAt(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	album, err := svc.Create(CreateAlbumRequest{Title: "Is This It", Artist: "The Strokes", ReleaseYear: 2001}, user.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	updated, err := svc.Update(album.ID, UpdateAlbumRequest{}, user.ID)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Is This It" || updated.Artist != "The Strokes" || updated.ReleaseYear != 2001 {
		t.Errorf("empty patch changed content: %q/%q/%d", updated.Title, updated.Artist, updated.ReleaseYear)
	}
	if updated.UpdatedAt.Before(album.UpdatedAt) {
		t.Errorf("updatedAt went backwards: %v -> %v", album.UpdatedAt, updated.UpdatedAt)
	}
}

func TestUpdateAlbumPermissionDenied(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	owner := createUser(t, db, "user", domain.RoleUser)
	stranger := createUser(t, db, "musicfan", domain.RoleUser)
	album, err := svc.Create(CreateAlbumRequest{Title: "OK Computer", Artist: "Radiohead", ReleaseYear: 1997, Genre: "Alternative Rock"}, owner.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Hacked"
	if _, err := svc.Update(album.ID, UpdateAlbumRequest{Title: &title}, stranger.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Update by stranger = %v, want ErrPermissionDenied", err)
	}

	got, err := svc.GetByID(album.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "OK Computer" || got.Genre != "Alternative Rock" {
		t.Errorf("album changed after denied update: %q/%q", got.Title, got.Genre)
	}
}

func TestUpdateAlbumAdminOverrideKeepsOwner(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	owner := createUser(t, db, "user", domain.RoleUser)
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	album, err := svc.Create(CreateAlbumRequest{Title: "OK Computer", Artist: "Radiohead", ReleaseYear: 1997}, owner.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	genre := "Art Rock"
	updated, err := svc.Update(album.ID, UpdateAlbumRequest{Genre: &genre}, admin.ID)
	if err != nil {
		t.Fatalf("Update by admin: %v", err)
	}
	if updated.Genre != "Art Rock" {
		t.Errorf("genre = %q, want %q", updated.Genre, "Art Rock")
	}

	// Ownership never transfers, not even when an admin edits
	got, err := svc.GetByID(album.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CreatedBy.ID != owner.ID {
		t.Errorf("owner id = %d, want %d", got.CreatedBy.ID, owner.ID)
	}
}

func TestUpdateAlbumNotFound(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)

	title := "x"
	if _, err := svc.Update(999, UpdateAlbumRequest{Title: &title}, user.ID); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("Update of missing album = %v, want ErrAlbumNotFound", err)
	}
}

func TestDeleteAlbumCascadesToSongs(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	owner := createUser(t, db, "user", domain.RoleUser)
	album := createAlbum(t, db, owner, "OK Computer", "Radiohead", 1997, "Alternative Rock")
	createSong(t, db, album.ID, "Airbag", 1, 4*time.Minute+44*time.Second)
	createSong(t, db, album.ID, "Paranoid Android", 2, 6*time.Minute+23*time.Second)
	createSong(t, db, album.ID, "Subterranean Homesick Alien", 3, 4*time.Minute+27*time.Second)

	if err := svc.Delete(album.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(album.ID); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrAlbumNotFound", err)
	}
	if n := countSongs(t, db, album.ID); n != 0 {
		t.Errorf("%d songs left after album delete, want 0", n)
	}
}

func TestDeleteAlbumFailureRestoresSongs(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	owner := createUser(t, db, "user", domain.RoleUser)
	album := createAlbum(t, db, owner, "OK Computer", "Radiohead", 1997, "Alternative Rock")
	createSong(t, db, album.ID, "Airbag", 1, 4*time.Minute+44*time.Second)
	createSong(t, db, album.ID, "Paranoid Android", 2, 6*time.Minute+23*time.Second)

	// Block the album-row delete so it fails after the song bulk-delete
	// has already run inside the transaction
	if err := db.Exec(`CREATE TRIGGER block_album_delete BEFORE DELETE ON albums
		BEGIN SELECT RAISE(ABORT, 'album delete blocked'); END`).Error; err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if err := svc.Delete(album.ID, owner.ID); err == nil {
		t.Fatal("Delete succeeded despite the blocked album delete")
	}
	// The song bulk-delete must have rolled back with it
	if n := countSongs(t, db, album.ID); n != 2 {
		t.Errorf("%d songs after failed delete, want 2", n)
	}
	if _, err := svc.GetByID(album.ID); err != nil {
		t.Errorf("album missing after failed delete: %v", err)
	}
}

func TestDeleteAlbumAdminOverride(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	owner := createUser(t, db, "user", domain.RoleUser)
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	album := createAlbum(t, db, owner, "Is This It", "The Strokes", 2001, "Indie Rock")
	createSong(t, db, album.ID, "Soma", 3, 2*time.Minute+33*time.Second)

	if err := svc.Delete(album.ID, admin.ID); err != nil {
		t.Fatalf("Delete by admin: %v", err)
	}
	if _, err := svc.GetByID(album.ID); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("album still present after admin delete: %v", err)
	}
}

func TestDeleteAlbumPermissionDenied(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	owner := createUser(t, db, "user", domain.RoleUser)
	stranger := createUser(t, db, "musicfan", domain.RoleUser)
	album := createAlbum(t, db, owner, "OK Computer", "Radiohead", 1997, "Alternative Rock")
	createSong(t, db, album.ID, "Airbag", 1, 4*time.Minute+44*time.Second)

	if err := svc.Delete(album.ID, stranger.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Delete by stranger = %v, want ErrPermissionDenied", err)
	}
	// Nothing was touched: album and its songs are still there
	if _, err := svc.GetByID(album.ID); err != nil {
		t.Errorf("album missing after denied delete: %v", err)
	}
	if n := countSongs(t, db, album.ID); n != 1 {
		t.Errorf("%d songs after denied delete, want 1", n)
	}
}

func TestDeleteAlbumNotFound(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)

	if err := svc.Delete(999, user.ID); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("Delete of missing album = %v, want ErrAlbumNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	createAlbum(t, db, user, "OK Computer", "Radiohead", 1997, "Alternative Rock")
	createAlbum(t, db, user, "In Rainbows", "Radiohead", 2007, "Art Rock")
	createAlbum(t, db, user, "Kind of Blue", "Miles Davis", 1959, "Jazz")

	// Case-insensitive substring over title OR artist
	got, err := svc.Search("radio")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Search(radio) returned %d albums, want 2", len(got))
	}

	got, err = svc.Search("COMPUTER")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Title != "OK Computer" {
		t.Errorf("Search(COMPUTER) = %v, want just OK Computer", got)
	}

	// An empty query is passed through and matches every album
	got, err = svc.Search("")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Search(\"\") returned %d albums, want 3", len(got))
	}
}

func TestFilterByGenreExactIgnoreCase(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	createAlbum(t, db, user, "Kind of Blue", "Miles Davis", 1959, "Jazz")
	createAlbum(t, db, user, "Head Hunters", "Herbie Hancock", 1973, "jazz")
	createAlbum(t, db, user, "Bitches Brew", "Miles Davis", 1970, "Jazz Fusion")

	got, err := svc.FilterByGenre("JAZZ")
	if err != nil {
		t.Fatalf("FilterByGenre: %v", err)
	}
	// Equality, not substring: "Jazz Fusion" must not match
	if len(got) != 2 {
		t.Errorf("FilterByGenre(JAZZ) returned %d albums, want 2", len(got))
	}
	for _, a := range got {
		if a.Title == "Bitches Brew" {
			t.Error("substring match leaked into genre equality filter")
		}
	}
}

func TestFilterByArtistExactIgnoreCase(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	createAlbum(t, db, user, "Kind of Blue", "Miles Davis", 1959, "Jazz")
	createAlbum(t, db, user, "Bitches Brew", "miles davis", 1970, "Jazz Fusion")
	createAlbum(t, db, user, "21", "Adele", 2011, "Pop/Soul")

	got, err := svc.FilterByArtist("MILES DAVIS")
	if err != nil {
		t.Fatalf("FilterByArtist: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("FilterByArtist(MILES DAVIS) returned %d albums, want 2", len(got))
	}
}

func TestFilterByYearRangeInclusive(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	createAlbum(t, db, user, "Kind of Blue", "Miles Davis", 1959, "Jazz")
	createAlbum(t, db, user, "The Dark Side of the Moon", "Pink Floyd", 1973, "Progressive Rock")
	createAlbum(t, db, user, "OK Computer", "Radiohead", 1997, "Alternative Rock")

	got, err := svc.FilterByYearRange(1959, 1973)
	if err != nil {
		t.Fatalf("FilterByYearRange: %v", err)
	}
	// Both endpoints are included
	if len(got) != 2 {
		t.Errorf("FilterByYearRange(1959, 1973) returned %d albums, want 2", len(got))
	}
}

func TestAdvancedSearchDefaultBounds(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	createAlbum(t, db, user, "Symphony No. 9", "Antonin Dvorak", 1893, "Classical")
	createAlbum(t, db, user, "Kind of Blue", "Miles Davis", 1959, "Jazz")
	createAlbum(t, db, user, "Unreleased", "Nobody", time.Now().Year()+5, "Vaporware")

	got, err := svc.AdvancedSearch(nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("AdvancedSearch: %v", err)
	}
	want, err := svc.FilterByYearRange(1900, time.Now().Year())
	if err != nil {
		t.Fatalf("FilterByYearRange: %v", err)
	}
	// No filters means 1900..current year, nothing more and nothing less
	if len(got) != len(want) {
		t.Fatalf("AdvancedSearch() returned %d albums, FilterByYearRange(1900, now) %d", len(got), len(want))
	}
	if len(got) != 1 || got[0].Title != "Kind of Blue" {
		t.Errorf("default bounds should exclude pre-1900 and future releases, got %v", got)
	}
}

func TestAdvancedSearchCombinesPredicates(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	user := createUser(t, db, "user", domain.RoleUser)
	createAlbum(t, db, user, "Kind of Blue", "Miles Davis", 1959, "Jazz")
	createAlbum(t, db, user, "Birth of the Cool", "Miles Davis", 1949, "Jazz")
	createAlbum(t, db, user, "Elvis Presley", "Elvis Presley", 1956, "Rock and Roll")

	genre := "jazz"
	from, to := 1950, 1960
	got, err := svc.AdvancedSearch(nil, nil, &genre, &from, &to)
	if err != nil {
		t.Fatalf("AdvancedSearch: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Kind of Blue" {
		t.Errorf("AdvancedSearch(genre=jazz, 1950-1960) = %v, want just Kind of Blue", got)
	}

	// Text predicates AND together with the year range
	artist := "miles"
	title := "blue"
	got, err = svc.AdvancedSearch(&title, &artist, nil, nil, nil)
	if err != nil {
		t.Fatalf("AdvancedSearch: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Kind of Blue" {
		t.Errorf("AdvancedSearch(title=blue, artist=miles) = %v, want just Kind of Blue", got)
	}
}

func TestCountAndExistsByOwner(t *testing.T) {
	db := testDB(t)
	svc := NewAlbumService(db)
	owner := createUser(t, db, "user", domain.RoleUser)
	other := createUser(t, db, "musicfan", domain.RoleUser)
	createAlbum(t, db, owner, "OK Computer", "Radiohead", 1997, "Alternative Rock")
	createAlbum(t, db, owner, "Is This It", "The Strokes", 2001, "Indie Rock")

	n, err := svc.CountByUserID(owner.ID)
	if err != nil {
		t.Fatalf("CountByUserID: %v", err)
	}
	if n != 2 {
		t.Errorf("CountByUserID = %d, want 2", n)
	}

	exists, err := svc.ExistsByTitleAndOwner("OK Computer", owner.ID)
	if err != nil {
		t.Fatalf("ExistsByTitleAndOwner: %v", err)
	}
	if !exists {
		t.Error("ExistsByTitleAndOwner = false for a seeded title")
	}
	exists, err = svc.ExistsByTitleAndOwner("OK Computer", other.ID)
	if err != nil {
		t.Fatalf("ExistsByTitleAndOwner: %v", err)
	}
	if exists {
		t.Error("ExistsByTitleAndOwner = true for another user's catalog")
	}
}
